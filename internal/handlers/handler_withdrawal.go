package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// withdrawalHandler handles HTTP requests for the withdrawal approval queue.
type withdrawalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newWithdrawalHandler(approvalService portssvc.ApprovalSvcFacade) *withdrawalHandler {
	return &withdrawalHandler{approvalService: approvalService}
}

// registerWithdrawalRoutes registers routes related to pending withdrawal
// requests.
func registerWithdrawalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newWithdrawalHandler(approvalService)

	withdrawals := rg.Group("/withdrawal-requests")
	{
		withdrawals.GET("", h.listPending)
		withdrawals.POST("/:requestID/decision", h.decide)
	}
}

func (h *withdrawalHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, err := h.approvalService.ListPendingWithdrawals(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list pending withdrawals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list withdrawal requests"})
		return
	}

	out := make([]dto.WithdrawalRequestResponse, len(requests))
	for i := range requests {
		out[i] = dto.ToWithdrawalRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// decide godoc
// @Summary Decide a pending withdrawal request
// @Description Commits an APPROVE or REJECT verdict; an approval also commits the withdrawal entry in the same transaction
// @Tags withdrawals
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param decision body dto.DecideRequest true "Verdict"
// @Success 200 {object} dto.WithdrawalRequestResponse
// @Failure 409 {object} map[string]string "Already decided by another teller"
// @Failure 422 {object} map[string]string "Balance would fall below product minimum"
// @Security BearerAuth
// @Router /withdrawal-requests/{requestID}/decision [post]
func (h *withdrawalHandler) decide(c *gin.Context) {
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

	request, err := h.approvalService.DecideWithdrawal(c.Request.Context(), c.Param("requestID"), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAlreadyDecided):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrBelowMinimumBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAccountBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to decide withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decide withdrawal"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToWithdrawalRequestResponse(request))
}
