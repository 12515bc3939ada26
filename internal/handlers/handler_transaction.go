package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// transactionHandler handles HTTP requests for money movement.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to deposits, withdrawals
// and loan repayments.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	txns := rg.Group("/transactions")
	{
		txns.POST("/deposits", h.deposit)
		txns.POST("/withdrawals", h.withdraw)
		txns.POST("/repayments", h.recordRepayment)
	}
}

// deposit godoc
// @Summary Deposit into a savings account
// @Description Credits a savings account and appends the ledger entry atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Account busy"
// @Failure 422 {object} map[string]string "Account not accepting transactions"
// @Security BearerAuth
// @Router /transactions/deposits [post]
func (h *transactionHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.transactionService.Deposit(c.Request.Context(), req, actorID)
	if err != nil {
		h.writeTransactionError(c, logger, "deposit", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// withdraw godoc
// @Summary Withdraw from a savings account
// @Description Commits immediately below the approval threshold; above it, records a pending request for teller sign-off
// @Tags transactions
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 201 {object} dto.LedgerEntryResponse "Committed entry"
// @Success 202 {object} dto.WithdrawalRequestResponse "Pending approval"
// @Failure 422 {object} map[string]string "Balance would fall below product minimum"
// @Security BearerAuth
// @Router /transactions/withdrawals [post]
func (h *transactionHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	outcome, err := h.transactionService.Withdraw(c.Request.Context(), req, actorID)
	if err != nil {
		h.writeTransactionError(c, logger, "withdrawal", err)
		return
	}

	if outcome.Request != nil {
		c.JSON(http.StatusAccepted, dto.ToWithdrawalRequestResponse(outcome.Request))
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(outcome.Entry))
}

// recordRepayment godoc
// @Summary Record a loan repayment
// @Description Applies a payment to a loan, capping at the outstanding balance; overpayment is carried forward or refunded per policy
// @Tags transactions
// @Accept json
// @Produce json
// @Param repayment body dto.RepaymentRequest true "Repayment details"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 422 {object} map[string]string "Loan not in a repayable state"
// @Security BearerAuth
// @Router /transactions/repayments [post]
func (h *transactionHandler) recordRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.transactionService.RecordRepayment(c.Request.Context(), req, actorID)
	if err != nil {
		h.writeTransactionError(c, logger, "repayment", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// writeTransactionError maps transaction failures to HTTP statuses. Policy
// violations are 422, concurrency conflicts 409, bad input 400.
func (h *transactionHandler) writeTransactionError(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBelowMinimumBalance),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAccountBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Transaction failed", slog.String("operation", op), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process " + op})
	}
}
