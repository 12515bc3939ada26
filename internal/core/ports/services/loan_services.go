package services

import (
	"context"
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/dto"
)

// LoanSvcFacade governs the loan lifecycle from submission through
// disbursement, repayment schedule state and restructuring.
type LoanSvcFacade interface {
	// SubmitApplication validates product rules, computes and freezes the
	// risk score and debt-to-income ratio, and records the application as
	// pending.
	SubmitApplication(ctx context.Context, req dto.SubmitApplicationRequest, actorID string) (*domain.LoanApplication, error)
	GetApplication(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	ListApplications(ctx context.Context, status domain.ApplicationStatus, limit int, offset int) ([]domain.LoanApplication, error)
	// BeginReview moves a pending application under review.
	BeginReview(ctx context.Context, applicationID string, actorID string) (*domain.LoanApplication, error)
	// Disburse turns an approved application into a loan account plus its
	// disbursement ledger entry, atomically.
	Disburse(ctx context.Context, applicationID string, actorID string) (*domain.LoanAccount, error)
	// Restructure spawns a new loan account referencing a defaulted one;
	// the old loan moves to its terminal restructured state.
	Restructure(ctx context.Context, loanID string, actorID string) (*domain.LoanAccount, error)
}

// ApprovalSvcFacade is the approval workflow coordinator: at most one
// decision is ever committed per item, enforced by compare-and-swap on the
// item's current status.
type ApprovalSvcFacade interface {
	DecideApplication(ctx context.Context, applicationID string, req dto.DecideRequest, actorID string) (*domain.LoanApplication, error)
	DecideWithdrawal(ctx context.Context, requestID string, req dto.DecideRequest, actorID string) (*domain.WithdrawalRequest, error)
	ListPendingApplications(ctx context.Context, limit int, offset int) ([]domain.LoanApplication, error)
	ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.WithdrawalRequest, error)
}

// AccrualSvcFacade is the interest & penalty engine. RunScan is scheduled,
// idempotent for a given day, and resumable from the last committed account.
type AccrualSvcFacade interface {
	RunScan(ctx context.Context, now time.Time) (*dto.AccrualScanResult, error)
}
