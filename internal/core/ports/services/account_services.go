package services

import (
	"context"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/dto"
)

// AccountSvcFacade defines account lifecycle and read operations.
type AccountSvcFacade interface {
	// OpenSavingsAccount creates a savings account, validating the product
	// constraints and committing any initial deposit atomically with the
	// account row.
	OpenSavingsAccount(ctx context.Context, req dto.OpenSavingsAccountRequest, actorID string) (*domain.SavingsAccount, error)
	GetSavingsAccount(ctx context.Context, accountID string) (*domain.SavingsAccount, error)
	GetLoanAccount(ctx context.Context, loanID string) (*domain.LoanAccount, error)
	// GetAccountSummary resolves either account kind into the dashboard
	// summary: derived balance, status and product terms.
	GetAccountSummary(ctx context.Context, accountID string) (*dto.AccountSummaryResponse, error)
	ListMemberAccounts(ctx context.Context, memberID string) ([]domain.SavingsAccount, []domain.LoanAccount, error)
}

// TransactionSvcFacade is the transaction processor: it validates and
// applies all money movement as atomic ledger mutations.
type TransactionSvcFacade interface {
	Deposit(ctx context.Context, req dto.DepositRequest, actorID string) (*domain.LedgerEntry, error)
	// Withdraw commits immediately below the approval threshold; above it,
	// it records a pending WithdrawalRequest for teller sign-off.
	Withdraw(ctx context.Context, req dto.WithdrawRequest, actorID string) (*dto.WithdrawOutcome, error)
	// RecordRepayment applies a payment to a loan, capping at the
	// outstanding balance; any overpayment becomes a credit-overflow entry
	// handled per the configured policy.
	RecordRepayment(ctx context.Context, req dto.RepaymentRequest, actorID string) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade exposes read and audit operations over the ledger store.
type LedgerSvcFacade interface {
	Statement(ctx context.Context, accountID string, params dto.StatementParams) ([]domain.LedgerEntry, *string, error)
	// VerifyAccount replays every entry in sequence order and checks the
	// fold against the latest snapshot; a mismatch is ErrLedgerInconsistency.
	VerifyAccount(ctx context.Context, accountID string) error
}
