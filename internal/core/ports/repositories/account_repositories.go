package repositories

import (
	"context"
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
)

// SavingsRepositoryFacade defines persistence operations for savings
// accounts. Balance snapshots are maintained by the ledger repository under
// the same lock as each append; this facade only reads them.
type SavingsRepositoryFacade interface {
	// SaveSavingsAccount creates the account row and, when initialDeposit
	// is non-nil, appends the funding entry in the same transaction.
	SaveSavingsAccount(ctx context.Context, account domain.SavingsAccount, initialDeposit *domain.LedgerEntry) error
	FindSavingsAccountByID(ctx context.Context, accountID string) (*domain.SavingsAccount, error)
	FindSavingsAccountsByMemberID(ctx context.Context, memberID string) ([]domain.SavingsAccount, error)
	// ListAccountsForAccrual returns active accounts whose last accrual is
	// before the cutoff, ordered by account ID so an interrupted scan can
	// resume without re-processing already-accrued accounts.
	ListAccountsForAccrual(ctx context.Context, before time.Time, afterAccountID string, limit int) ([]domain.SavingsAccount, error)
	UpdateSavingsStatus(ctx context.Context, accountID string, status domain.SavingsStatus, updatedBy string, at time.Time) error
}

// LoanRepositoryFacade defines persistence operations for loan accounts.
type LoanRepositoryFacade interface {
	// SaveLoanAccount atomically creates the loan account and appends its
	// disbursement entry: a loan account never exists without its first
	// ledger entry. When loan.RestructuredFrom is set, the referenced loan
	// is moved DEFAULTED -> RESTRUCTURED in the same transaction, failing
	// with ErrInvalidTransition if it is no longer defaulted.
	SaveLoanAccount(ctx context.Context, loan domain.LoanAccount, disbursement domain.LedgerEntry) error
	FindLoanAccountByID(ctx context.Context, loanID string) (*domain.LoanAccount, error)
	FindLoanAccountsByMemberID(ctx context.Context, memberID string) ([]domain.LoanAccount, error)
	// ListLoansPastDue returns active/overdue loans whose next payment due
	// date is before asOf, ordered by loan ID for resumable scans.
	ListLoansPastDue(ctx context.Context, asOf time.Time, afterLoanID string, limit int) ([]domain.LoanAccount, error)
	// UpdateLoanState applies a status/schedule change guarded by the
	// expected current status; it fails with ErrInvalidTransition when the
	// loan is no longer in the expected state.
	UpdateLoanState(ctx context.Context, loanID string, expected domain.LoanStatus, update LoanStateUpdate, updatedBy string, at time.Time) error
}

// LoanStateUpdate carries the loan row changes a ledger append commits in
// the same transaction. Nil fields are left untouched.
type LoanStateUpdate struct {
	Status          *domain.LoanStatus
	NextPaymentDue  *time.Time
	LastPenaltyDate *time.Time
}
