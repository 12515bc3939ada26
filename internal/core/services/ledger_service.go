package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// ledgerService exposes statement reads and the replay audit over the
// append-only ledger store.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Statement returns a page of ledger entries for the account, oldest first.
func (s *ledgerService) Statement(ctx context.Context, accountID string, params dto.StatementParams) ([]domain.LedgerEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, nextToken, err := s.ledgerRepo.EntriesForAccount(ctx, accountID, portsrepo.StatementParams{
		From:      params.From,
		To:        params.To,
		Limit:     limit,
		NextToken: params.NextToken,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read statement for account %s: %w", accountID, err)
	}
	return entries, nextToken, nil
}

// VerifyAccount replays every entry in sequence order and checks that each
// stored balance snapshot equals the running fold. A mismatch is a
// consistency fault: it is surfaced to an operator, never retried.
func (s *ledgerService) VerifyAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entries, err := s.ledgerRepo.ReplayEntries(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to replay entries for account %s: %w", accountID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	running := decimal.Zero
	var lastSequence int64
	for i := range entries {
		e := &entries[i]
		if e.Sequence <= lastSequence {
			logger.Error("Ledger sequence not monotonic",
				slog.String("account_id", accountID),
				slog.Int64("sequence", e.Sequence))
			return fmt.Errorf("%w: account %s sequence %d repeats or regresses",
				apperrors.ErrLedgerInconsistency, accountID, e.Sequence)
		}
		lastSequence = e.Sequence

		running = running.Add(e.Amount)
		if !running.Equal(e.ResultingBalance) {
			logger.Error("Ledger snapshot mismatch",
				slog.String("account_id", accountID),
				slog.Int64("sequence", e.Sequence),
				slog.String("replayed", running.String()),
				slog.String("snapshot", e.ResultingBalance.String()))
			return fmt.Errorf("%w: account %s at sequence %d replayed %s but snapshot is %s",
				apperrors.ErrLedgerInconsistency, accountID, e.Sequence, running.String(), e.ResultingBalance.String())
		}
	}

	latest, err := s.ledgerRepo.LatestEntry(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s has replayable entries but no latest entry",
				apperrors.ErrLedgerInconsistency, accountID)
		}
		return fmt.Errorf("failed to read latest entry for account %s: %w", accountID, err)
	}
	if !running.Equal(latest.ResultingBalance) {
		return fmt.Errorf("%w: account %s replayed %s but latest snapshot is %s",
			apperrors.ErrLedgerInconsistency, accountID, running.String(), latest.ResultingBalance.String())
	}

	logger.Debug("Ledger verified", slog.String("account_id", accountID), slog.Int("entries", len(entries)))
	return nil
}
