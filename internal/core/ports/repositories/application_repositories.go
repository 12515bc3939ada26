package repositories

import (
	"context"
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DecisionRecord carries the reviewer verdict a compare-and-swap decision
// update writes.
type DecisionRecord struct {
	Decision  domain.Decision
	ActorID   string
	Comment   string
	DecidedAt time.Time
}

// ApplicationRepositoryFacade defines persistence for loan applications.
type ApplicationRepositoryFacade interface {
	SaveApplication(ctx context.Context, application domain.LoanApplication) error
	FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus, limit int, offset int) ([]domain.LoanApplication, error)

	// MarkUnderReview moves PENDING -> UNDER_REVIEW conditionally; it fails
	// with ErrAlreadyDecided when the application left the pending state.
	MarkUnderReview(ctx context.Context, applicationID string, actorID string, at time.Time) (*domain.LoanApplication, error)

	// DecideApplication commits the decision only if the row's current
	// status is still decidable (compare-and-swap, not a blind overwrite).
	// Of two racing reviewers exactly one wins; the loser gets
	// ErrAlreadyDecided.
	DecideApplication(ctx context.Context, applicationID string, record DecisionRecord) (*domain.LoanApplication, error)
}

// WithdrawalRepositoryFacade defines persistence for withdrawal requests,
// with the same conditional-decision semantics as loan applications.
type WithdrawalRepositoryFacade interface {
	SaveWithdrawalRequest(ctx context.Context, request domain.WithdrawalRequest) error
	FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error)
	ListWithdrawalRequestsByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int, offset int) ([]domain.WithdrawalRequest, error)
	// DecideWithdrawal commits the decision by compare-and-swap on the
	// pending status. For approvals the caller supplies the withdrawal
	// entry and product floor; the decision and the ledger append commit in
	// one transaction, so an approved request is never left unapplied.
	DecideWithdrawal(ctx context.Context, requestID string, record DecisionRecord, entry *domain.LedgerEntry, minBalance decimal.Decimal) (*domain.WithdrawalRequest, error)
}
