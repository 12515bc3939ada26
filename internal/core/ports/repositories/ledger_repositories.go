package repositories

import (
	"context"
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementParams narrows and paginates a ledger read.
type StatementParams struct {
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}

// LedgerRepositoryFacade is the append-only ledger store. Every append locks
// the target account row, assigns the next monotonic per-account sequence
// number, computes the resulting balance from the locked snapshot and updates
// that snapshot, all in one database transaction. Lock acquisition is
// bounded; a timeout surfaces as ErrAccountBusy, never a deadlock.
type LedgerRepositoryFacade interface {
	// AppendSavingsEntry appends one entry to a savings account. minBalance
	// is the product floor re-checked under the lock; entries flagged
	// AdminOverride bypass the floor.
	AppendSavingsEntry(ctx context.Context, entry domain.LedgerEntry, minBalance decimal.Decimal) (*domain.LedgerEntry, error)

	// AppendLoanEntry appends one entry to a loan account and applies the
	// accompanying loan state update in the same transaction. The resulting
	// loan balance must stay >= 0.
	AppendLoanEntry(ctx context.Context, entry domain.LedgerEntry, expected domain.LoanStatus, update LoanStateUpdate) (*domain.LedgerEntry, error)

	// AppendRepayment commits a repayment leg on the loan plus any overflow
	// legs on the member's savings account atomically.
	AppendRepayment(ctx context.Context, loanEntry domain.LedgerEntry, expected domain.LoanStatus, update LoanStateUpdate, savingsEntries []domain.LedgerEntry) (*domain.LedgerEntry, error)

	// EntriesForAccount returns entries oldest first, optionally bounded by
	// a time range, with cursor pagination.
	EntriesForAccount(ctx context.Context, accountID string, params StatementParams) ([]domain.LedgerEntry, *string, error)

	// ReplayEntries returns every entry for the account in sequence order.
	ReplayEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)

	// LatestEntry returns the highest-sequence entry, or ErrNotFound when
	// the account has none.
	LatestEntry(ctx context.Context, accountID string) (*domain.LedgerEntry, error)
}
