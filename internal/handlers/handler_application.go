package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/core/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// applicationHandler handles HTTP requests for the loan lifecycle:
// submission, review, decision, disbursement and restructuring.
type applicationHandler struct {
	loanService     portssvc.LoanSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

func newApplicationHandler(loanService portssvc.LoanSvcFacade, approvalService portssvc.ApprovalSvcFacade) *applicationHandler {
	return &applicationHandler{loanService: loanService, approvalService: approvalService}
}

// registerApplicationRoutes registers routes related to loan applications.
func registerApplicationRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newApplicationHandler(loanService, approvalService)

	apps := rg.Group("/applications")
	{
		apps.POST("", h.submitApplication)
		apps.GET("", h.listApplications)
		apps.GET("/:applicationID", h.getApplication)
		apps.POST("/:applicationID/review", h.beginReview)
		apps.POST("/:applicationID/decision", h.decideApplication)
		apps.POST("/:applicationID/disburse", h.disburse)
	}
	rg.POST("/loans/:loanID/restructure", h.restructure)
}

// submitApplication godoc
// @Summary Submit a loan application
// @Description Validates product rules, freezes the risk score and debt-to-income ratio, and records the application as pending
// @Tags applications
// @Accept json
// @Produce json
// @Param application body dto.SubmitApplicationRequest true "Application details"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 422 {object} map[string]string "Product constraints violated"
// @Security BearerAuth
// @Router /applications [post]
func (h *applicationHandler) submitApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	application, err := h.loanService.SubmitApplication(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidProduct),
			errors.Is(err, services.ErrMemberNotTransacting):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to submit application", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicationResponse(application))
}

func (h *applicationHandler) getApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	application, err := h.loanService.GetApplication(c.Request.Context(), c.Param("applicationID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			logger.Error("Failed to get application", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(application))
}

func (h *applicationHandler) listApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := domain.ApplicationStatus(c.DefaultQuery("status", string(domain.ApplicationPending)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	applications, err := h.loanService.ListApplications(c.Request.Context(), status, limit, offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list applications", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list applications"})
		}
		return
	}

	out := make([]dto.ApplicationResponse, len(applications))
	for i := range applications {
		out[i] = dto.ToApplicationResponse(&applications[i])
	}
	c.JSON(http.StatusOK, gin.H{"applications": out})
}

// beginReview godoc
// @Summary Move a pending application under review
// @Tags applications
// @Produce json
// @Param applicationID path string true "Application ID"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 409 {object} map[string]string "Application no longer pending"
// @Security BearerAuth
// @Router /applications/{applicationID}/review [post]
func (h *applicationHandler) beginReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	application, err := h.loanService.BeginReview(c.Request.Context(), c.Param("applicationID"), actorID)
	if err != nil {
		h.writeDecisionError(c, logger, "begin review", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(application))
}

// decideApplication godoc
// @Summary Decide a loan application
// @Description Commits an APPROVE or REJECT verdict. Concurrent reviewers race on the current status; exactly one decision wins
// @Tags applications
// @Accept json
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param decision body dto.DecideRequest true "Verdict"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 409 {object} map[string]string "Already decided by another reviewer"
// @Security BearerAuth
// @Router /applications/{applicationID}/decision [post]
func (h *applicationHandler) decideApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	application, err := h.approvalService.DecideApplication(c.Request.Context(), c.Param("applicationID"), req, actorID)
	if err != nil {
		h.writeDecisionError(c, logger, "decide application", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToApplicationResponse(application))
}

// disburse godoc
// @Summary Disburse an approved application
// @Description Creates the loan account and its disbursement ledger entry atomically; repeat calls are rejected
// @Tags applications
// @Produce json
// @Param applicationID path string true "Application ID"
// @Success 201 {object} dto.LoanAccountResponse
// @Failure 409 {object} map[string]string "Already disbursed"
// @Failure 422 {object} map[string]string "Application not approved"
// @Security BearerAuth
// @Router /applications/{applicationID}/disburse [post]
func (h *applicationHandler) disburse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.Disburse(c.Request.Context(), c.Param("applicationID"), actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyDisbursed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotApproved):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to disburse", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disburse loan"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanAccountResponse(loan, time.Now().UTC()))
}

// restructure godoc
// @Summary Restructure a defaulted loan
// @Description Spawns a new loan for the outstanding balance; the defaulted loan moves to its terminal restructured state
// @Tags applications
// @Produce json
// @Param loanID path string true "Defaulted loan ID"
// @Success 201 {object} dto.LoanAccountResponse
// @Failure 422 {object} map[string]string "Loan is not defaulted"
// @Security BearerAuth
// @Router /loans/{loanID}/restructure [post]
func (h *applicationHandler) restructure(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.Restructure(c.Request.Context(), c.Param("loanID"), actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotDefaulted),
			errors.Is(err, apperrors.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to restructure loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restructure loan"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanAccountResponse(loan, time.Now().UTC()))
}

// writeDecisionError maps approval workflow failures to HTTP statuses.
func (h *applicationHandler) writeDecisionError(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Approval operation failed", slog.String("operation", op), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
	}
}
