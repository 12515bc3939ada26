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
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

// approvalService coordinates reviewer decisions. Every decision goes through
// a conditional status update in the repository, so of two racing reviewers
// exactly one wins and the other gets ErrAlreadyDecided.
type approvalService struct {
	productRepo     portsrepo.ProductRepositoryFacade
	savingsRepo     portsrepo.SavingsRepositoryFacade
	applicationRepo portsrepo.ApplicationRepositoryFacade
	withdrawalRepo  portsrepo.WithdrawalRepositoryFacade
	publisher       *events.Publisher
}

// NewApprovalService creates the approval workflow coordinator.
func NewApprovalService(repos portsrepo.Repositories, publisher *events.Publisher) portssvc.ApprovalSvcFacade {
	return &approvalService{
		productRepo:     repos.Product,
		savingsRepo:     repos.Savings,
		applicationRepo: repos.Application,
		withdrawalRepo:  repos.Withdrawal,
		publisher:       publisher,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// DecideApplication commits an approve or reject verdict on a loan
// application. The repository swap fails with ErrAlreadyDecided when another
// reviewer got there first.
func (s *approvalService) DecideApplication(ctx context.Context, applicationID string, req dto.DecideRequest, actorID string) (*domain.LoanApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	decision := domain.Decision(req.Decision)
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: unknown decision %q", apperrors.ErrValidation, req.Decision)
	}

	record := portsrepo.DecisionRecord{
		Decision:  decision,
		ActorID:   actorID,
		Comment:   req.Comment,
		DecidedAt: time.Now().UTC(),
	}

	application, err := s.applicationRepo.DecideApplication(ctx, applicationID, record)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyDecided) {
			logger.Error("Failed to decide application", slog.String("error", err.Error()), slog.String("application_id", applicationID))
		}
		return nil, fmt.Errorf("failed to decide application %s: %w", applicationID, err)
	}

	eventType := events.LoanRejected
	if decision == domain.DecisionApprove {
		eventType = events.LoanApproved
	}
	if perr := s.publisher.Publish(ctx, events.ApprovalEventsStream, eventType, dto.ToApplicationResponse(application)); perr != nil {
		logger.Warn("Failed to publish decision event", slog.String("error", perr.Error()))
	}

	logger.Info("Application decided",
		slog.String("application_id", applicationID),
		slog.String("decision", string(decision)),
		slog.String("decided_by", actorID))
	return application, nil
}

// DecideWithdrawal commits a verdict on a pending withdrawal request. For an
// approval the resulting withdrawal entry is written in the same transaction
// as the decision, so an approved request can never sit unapplied.
func (s *approvalService) DecideWithdrawal(ctx context.Context, requestID string, req dto.DecideRequest, actorID string) (*domain.WithdrawalRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	decision := domain.Decision(req.Decision)
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: unknown decision %q", apperrors.ErrValidation, req.Decision)
	}

	request, err := s.withdrawalRepo.FindWithdrawalRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find withdrawal request %s: %w", requestID, err)
	}

	now := time.Now().UTC()
	record := portsrepo.DecisionRecord{
		Decision:  decision,
		ActorID:   actorID,
		Comment:   req.Comment,
		DecidedAt: now,
	}

	var entry *domain.LedgerEntry
	minBalance := decimal.Zero
	if decision == domain.DecisionApprove {
		account, err := s.savingsRepo.FindSavingsAccountByID(ctx, request.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to find savings account %s: %w", request.AccountID, err)
		}
		product, err := s.productRepo.FindSavingsProductByID(ctx, account.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to find product %s: %w", account.ProductID, err)
		}
		minBalance = product.MinimumBalance
		entry = &domain.LedgerEntry{
			EntryID:     uuid.NewString(),
			AccountID:   account.AccountID,
			AccountKind: domain.KindSavings,
			EntryType:   domain.EntryWithdrawal,
			Amount:      request.Amount.Neg(),
			EntryDate:   now,
			Reference:   fmt.Sprintf("approved withdrawal request %s", request.RequestID),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}

	decided, err := s.withdrawalRepo.DecideWithdrawal(ctx, requestID, record, entry, minBalance)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyDecided) {
			logger.Error("Failed to decide withdrawal", slog.String("error", err.Error()), slog.String("request_id", requestID))
		}
		return nil, fmt.Errorf("failed to decide withdrawal %s: %w", requestID, err)
	}

	if perr := s.publisher.Publish(ctx, events.ApprovalEventsStream, events.WithdrawalDecided, dto.ToWithdrawalRequestResponse(decided)); perr != nil {
		logger.Warn("Failed to publish withdrawal decision event", slog.String("error", perr.Error()))
	}

	logger.Info("Withdrawal decided",
		slog.String("request_id", requestID),
		slog.String("decision", string(decision)),
		slog.String("decided_by", actorID))
	return decided, nil
}

func (s *approvalService) ListPendingApplications(ctx context.Context, limit int, offset int) ([]domain.LoanApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.applicationRepo.ListApplicationsByStatus(ctx, domain.ApplicationPending, limit, offset)
}

func (s *approvalService) ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.withdrawalRepo.ListWithdrawalRequestsByStatus(ctx, domain.WithdrawalPending, limit, offset)
}
