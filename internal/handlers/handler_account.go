package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts and statements.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{accountService: as, ledgerService: ls}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newAccountHandler(accountService, ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/savings", h.openSavingsAccount)
		accounts.GET("/savings/:accountID", h.getSavingsAccount)
		accounts.GET("/loans/:loanID", h.getLoanAccount)
		accounts.GET("/:accountID/summary", h.getAccountSummary)
		accounts.GET("/:accountID/statement", h.getStatement)
		accounts.GET("/:accountID/verify", h.verifyAccount)
	}
	rg.GET("/members/:memberID/accounts", h.listMemberAccounts)
}

// openSavingsAccount godoc
// @Summary Open a savings account
// @Description Opens a savings account, optionally funding it with an initial deposit in the same transaction
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.OpenSavingsAccountRequest true "Account details"
// @Success 201 {object} dto.SavingsAccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 422 {object} map[string]string "Product constraints not met"
// @Security BearerAuth
// @Router /accounts/savings [post]
func (h *accountHandler) openSavingsAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenSavingsAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.OpenSavingsAccount(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidProduct):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrAccountInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to open savings account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToSavingsAccountResponse(account))
}

func (h *accountHandler) getSavingsAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account, err := h.accountService.GetSavingsAccount(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get savings account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToSavingsAccountResponse(account))
}

func (h *accountHandler) getLoanAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loan, err := h.accountService.GetLoanAccount(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to get loan account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve loan"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanAccountResponse(loan, time.Now().UTC()))
}

// getAccountSummary godoc
// @Summary Account summary
// @Description Dashboard view of any account: derived balance, status and product terms
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account or loan ID"
// @Success 200 {object} dto.AccountSummaryResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID}/summary [get]
func (h *accountHandler) getAccountSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	summary, err := h.accountService.GetAccountSummary(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account summary", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve summary"})
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *accountHandler) listMemberAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	savings, loans, err := h.accountService.ListMemberAccounts(c.Request.Context(), c.Param("memberID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			logger.Error("Failed to list member accounts", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		}
		return
	}

	now := time.Now().UTC()
	savingsOut := make([]dto.SavingsAccountResponse, len(savings))
	for i := range savings {
		savingsOut[i] = dto.ToSavingsAccountResponse(&savings[i])
	}
	loansOut := make([]dto.LoanAccountResponse, len(loans))
	for i := range loans {
		loansOut[i] = dto.ToLoanAccountResponse(&loans[i], now)
	}
	c.JSON(http.StatusOK, gin.H{"savings": savingsOut, "loans": loansOut})
}

// getStatement godoc
// @Summary Account statement
// @Description Ledger entries for the account, oldest first, with cursor pagination and optional date range
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Param from query string false "RFC3339 lower bound (inclusive)"
// @Param to query string false "RFC3339 upper bound (exclusive)"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.StatementResponse
// @Security BearerAuth
// @Router /accounts/{accountID}/statement [get]
func (h *accountHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	params := dto.StatementParams{}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		params.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		params.To = &t
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit'"})
			return
		}
		params.Limit = limit
	}
	if v := c.Query("nextToken"); v != "" {
		params.NextToken = &v
	}

	entries, nextToken, err := h.ledgerService.Statement(c.Request.Context(), accountID, params)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to read statement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read statement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToStatementResponse(entries, nextToken))
}

// verifyAccount godoc
// @Summary Verify ledger integrity for an account
// @Description Replays every entry in sequence order and checks the fold against the stored snapshots
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Ledger inconsistency detected"
// @Security BearerAuth
// @Router /accounts/{accountID}/verify [get]
func (h *accountHandler) verifyAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	if err := h.ledgerService.VerifyAccount(c.Request.Context(), accountID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrLedgerInconsistency):
			logger.Error("Ledger inconsistency detected", slog.String("account_id", accountID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to verify account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "consistent"})
}
