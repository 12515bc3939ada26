package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
	"github.com/sacco-suite/coop_core_app/internal/platform/config"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

var (
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrLoanNotRepayable  = errors.New("loan does not accept repayments in its current state")
	ErrNoOverflowAccount = errors.New("member has no active savings account to receive overpayment")
)

// transactionService is the transaction processor: every money movement is
// validated here and committed as an atomic ledger mutation.
type transactionService struct {
	memberRepo     portsrepo.MemberRepositoryFacade
	productRepo    portsrepo.ProductRepositoryFacade
	savingsRepo    portsrepo.SavingsRepositoryFacade
	loanRepo       portsrepo.LoanRepositoryFacade
	ledgerRepo     portsrepo.LedgerRepositoryFacade
	withdrawalRepo portsrepo.WithdrawalRepositoryFacade
	publisher      *events.Publisher

	approvalThreshold decimal.Decimal
	overpayment       config.OverpaymentPolicy
}

// NewTransactionService creates the transaction processor.
func NewTransactionService(
	repos portsrepo.Repositories,
	publisher *events.Publisher,
	approvalThreshold decimal.Decimal,
	overpayment config.OverpaymentPolicy,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		memberRepo:        repos.Member,
		productRepo:       repos.Product,
		savingsRepo:       repos.Savings,
		loanRepo:          repos.Loan,
		ledgerRepo:        repos.Ledger,
		withdrawalRepo:    repos.Withdrawal,
		publisher:         publisher,
		approvalThreshold: approvalThreshold,
		overpayment:       overpayment,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// loadTransactableSavings fetches the savings account, its product and
// verifies the account and owning member accept transactions.
func (s *transactionService) loadTransactableSavings(ctx context.Context, accountID string) (*domain.SavingsAccount, *domain.SavingsProduct, error) {
	account, err := s.savingsRepo.FindSavingsAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find savings account %s: %w", accountID, err)
	}
	if account.Status != domain.SavingsActive {
		return nil, nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountInactive, accountID, account.Status)
	}

	member, err := s.memberRepo.FindMemberByID(ctx, account.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find member %s: %w", account.MemberID, err)
	}
	if !member.CanTransact() {
		return nil, nil, fmt.Errorf("%w: member %s is %s", apperrors.ErrAccountInactive, member.MemberID, member.Status)
	}

	product, err := s.productRepo.FindSavingsProductByID(ctx, account.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find product %s: %w", account.ProductID, err)
	}
	return account, product, nil
}

// Deposit appends a deposit entry to a savings account.
func (s *transactionService) Deposit(ctx context.Context, req dto.DepositRequest, actorID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrZeroAmount)
	}

	account, product, err := s.loadTransactableSavings(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		AccountID:   account.AccountID,
		AccountKind: domain.KindSavings,
		EntryType:   domain.EntryDeposit,
		Amount:      req.Amount,
		EntryDate:   now,
		Reference:   reference(req.Method, req.Reference),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	stored, err := s.ledgerRepo.AppendSavingsEntry(ctx, entry, product.MinimumBalance)
	if err != nil {
		logger.Error("Failed to append deposit entry", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	if perr := s.publisher.Publish(ctx, events.TransactionEventsStream, events.DepositRecorded, stored); perr != nil {
		logger.Warn("Failed to publish deposit event", slog.String("error", perr.Error()))
	}

	logger.Info("Deposit recorded",
		slog.String("account_id", account.AccountID),
		slog.String("amount", req.Amount.String()),
		slog.Int64("sequence", stored.Sequence))
	return stored, nil
}

// Withdraw debits a savings account. Amounts at or above the approval
// threshold become a pending WithdrawalRequest instead of an immediate entry.
func (s *transactionService) Withdraw(ctx context.Context, req dto.WithdrawRequest, actorID string) (*dto.WithdrawOutcome, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrZeroAmount)
	}

	account, product, err := s.loadTransactableSavings(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	// Early floor check; re-checked under the account lock by the ledger
	// store so a concurrent withdrawal cannot slip below the minimum.
	if !req.AdminOverride && account.Balance.Sub(req.Amount).LessThan(product.MinimumBalance) {
		return nil, fmt.Errorf("%w: balance %s, requested %s, minimum %s",
			apperrors.ErrBelowMinimumBalance, account.Balance.String(), req.Amount.String(), product.MinimumBalance.String())
	}

	now := time.Now().UTC()

	if !req.AdminOverride && req.Amount.GreaterThanOrEqual(s.approvalThreshold) {
		request := domain.WithdrawalRequest{
			RequestID: uuid.NewString(),
			AccountID: account.AccountID,
			Amount:    req.Amount,
			Reason:    req.Reason,
			Status:    domain.WithdrawalPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		if err := s.withdrawalRepo.SaveWithdrawalRequest(ctx, request); err != nil {
			logger.Error("Failed to save withdrawal request", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to save withdrawal request: %w", err)
		}
		logger.Info("Withdrawal pending teller approval",
			slog.String("request_id", request.RequestID),
			slog.String("amount", req.Amount.String()))
		return &dto.WithdrawOutcome{Request: &request}, nil
	}

	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     account.AccountID,
		AccountKind:   domain.KindSavings,
		EntryType:     domain.EntryWithdrawal,
		Amount:        req.Amount.Neg(),
		EntryDate:     now,
		Reference:     req.Reason,
		AdminOverride: req.AdminOverride,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	stored, err := s.ledgerRepo.AppendSavingsEntry(ctx, entry, product.MinimumBalance)
	if err != nil {
		logger.Error("Failed to append withdrawal entry", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	logger.Info("Withdrawal recorded",
		slog.String("account_id", account.AccountID),
		slog.String("amount", req.Amount.String()),
		slog.Int64("sequence", stored.Sequence))
	return &dto.WithdrawOutcome{Entry: stored}, nil
}

// RecordRepayment applies a payment to a loan. The repayment leg is capped
// at the outstanding balance; any excess becomes a credit-overflow entry on
// the member's savings account, handled per the configured policy.
func (s *transactionService) RecordRepayment(ctx context.Context, req dto.RepaymentRequest, actorID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrZeroAmount)
	}

	loan, err := s.loanRepo.FindLoanAccountByID(ctx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", req.LoanID, err)
	}
	if loan.Status != domain.LoanActive && loan.Status != domain.LoanOverdue {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrLoanNotRepayable, loan.LoanID, loan.Status)
	}

	now := time.Now().UTC()

	applied := req.Amount
	overflow := decimal.Zero
	if applied.GreaterThan(loan.OutstandingBalance) {
		applied = loan.OutstandingBalance
		overflow = req.Amount.Sub(loan.OutstandingBalance)
	}
	newBalance := loan.OutstandingBalance.Sub(applied)

	update := portsrepo.LoanStateUpdate{}
	newStatus := loan.Status
	switch {
	case newBalance.IsZero():
		newStatus = domain.LoanClosed
	case loan.Status == domain.LoanOverdue && applied.GreaterThanOrEqual(loan.MonthlyPayment):
		// Catch-up payment brings the loan current.
		newStatus = domain.LoanActive
	}
	if newStatus != loan.Status {
		update.Status = &newStatus
	}
	if !newBalance.IsZero() && applied.GreaterThanOrEqual(loan.MonthlyPayment) {
		nextDue := loan.NextPaymentDue.AddDate(0, 1, 0)
		update.NextPaymentDue = &nextDue
	}

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	loanEntry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		AccountID:   loan.LoanID,
		AccountKind: domain.KindLoan,
		EntryType:   domain.EntryRepayment,
		Amount:      applied.Neg(),
		EntryDate:   now,
		Reference:   reference(req.Method, req.Reference),
		AuditFields: audit,
	}

	var savingsEntries []domain.LedgerEntry
	if overflow.IsPositive() {
		savingsEntries, err = s.overflowEntries(ctx, loan.MemberID, loan.LoanID, overflow, audit)
		if err != nil {
			return nil, err
		}
	}

	stored, err := s.ledgerRepo.AppendRepayment(ctx, loanEntry, loan.Status, update, savingsEntries)
	if err != nil {
		logger.Error("Failed to append repayment", slog.String("error", err.Error()), slog.String("loan_id", loan.LoanID))
		return nil, fmt.Errorf("failed to record repayment: %w", err)
	}

	if perr := s.publisher.Publish(ctx, events.TransactionEventsStream, events.RepaymentRecorded, stored); perr != nil {
		logger.Warn("Failed to publish repayment event", slog.String("error", perr.Error()))
	}
	if newStatus == domain.LoanClosed {
		if perr := s.publisher.Publish(ctx, events.LoanEventsStream, events.LoanClosed, stored); perr != nil {
			logger.Warn("Failed to publish loan closed event", slog.String("error", perr.Error()))
		}
	}

	logger.Info("Repayment recorded",
		slog.String("loan_id", loan.LoanID),
		slog.String("applied", applied.String()),
		slog.String("overflow", overflow.String()),
		slog.String("status", string(newStatus)))
	return stored, nil
}

// overflowEntries builds the savings legs for an overpayment. Carry-forward
// is a single credit; refund pairs the credit with an immediate payout so
// the money trail stays on the ledger.
func (s *transactionService) overflowEntries(ctx context.Context, memberID, loanID string, overflow decimal.Decimal, audit domain.AuditFields) ([]domain.LedgerEntry, error) {
	accounts, err := s.savingsRepo.FindSavingsAccountsByMemberID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find savings accounts for member %s: %w", memberID, err)
	}
	var target *domain.SavingsAccount
	for i := range accounts {
		if accounts[i].Status == domain.SavingsActive {
			target = &accounts[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: member %s", ErrNoOverflowAccount, memberID)
	}

	ref := fmt.Sprintf("overpayment on loan %s", loanID)
	entries := []domain.LedgerEntry{{
		EntryID:     uuid.NewString(),
		AccountID:   target.AccountID,
		AccountKind: domain.KindSavings,
		EntryType:   domain.EntryCreditOverflow,
		Amount:      overflow,
		EntryDate:   audit.CreatedAt,
		Reference:   ref,
		AuditFields: audit,
	}}

	if s.overpayment == config.OverpaymentRefund {
		entries = append(entries, domain.LedgerEntry{
			EntryID:     uuid.NewString(),
			AccountID:   target.AccountID,
			AccountKind: domain.KindSavings,
			EntryType:   domain.EntryWithdrawal,
			Amount:      overflow.Neg(),
			EntryDate:   audit.CreatedAt,
			Reference:   ref + " refund",
			// The refund leg may pass the floor: the credit it reverses
			// was never part of the member's own balance.
			AdminOverride: true,
			AuditFields:   audit,
		})
	}
	return entries, nil
}

// reference joins the payment method and an optional external reference.
func reference(method, ref string) string {
	if ref == "" {
		return method
	}
	return method + ":" + ref
}
