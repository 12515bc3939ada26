package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	"github.com/sacco-suite/coop_core_app/internal/models"
	"github.com/sacco-suite/coop_core_app/internal/utils/mapping"
)

type PgxWithdrawalRepository struct {
	BaseRepository
	ledgerRepo *PgxLedgerRepository
}

// newPgxWithdrawalRepository creates a new repository for withdrawal request
// data. It borrows the ledger repository's append logic so an approval's
// withdrawal entry commits in the decision's transaction.
func newPgxWithdrawalRepository(pool *pgxpool.Pool, ledgerRepo *PgxLedgerRepository) portsrepo.WithdrawalRepositoryFacade {
	return &PgxWithdrawalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ledgerRepo:     ledgerRepo,
	}
}

var _ portsrepo.WithdrawalRepositoryFacade = (*PgxWithdrawalRepository)(nil)

const withdrawalColumns = `
	request_id, account_id, amount, reason, status, decided_by, decision_comment,
	decided_at, created_at, created_by, last_updated_at, last_updated_by`

func scanWithdrawalRequest(row pgx.Row) (models.WithdrawalRequest, error) {
	var m models.WithdrawalRequest
	err := row.Scan(
		&m.RequestID,
		&m.AccountID,
		&m.Amount,
		&m.Reason,
		&m.Status,
		&m.DecidedBy,
		&m.DecisionComment,
		&m.DecidedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxWithdrawalRepository) SaveWithdrawalRequest(ctx context.Context, request domain.WithdrawalRequest) error {
	m := mapping.ToModelWithdrawalRequest(request)
	query := `
		INSERT INTO withdrawal_requests (
			request_id, account_id, amount, reason, status, decided_by, decision_comment,
			decided_at, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RequestID,
		m.AccountID,
		m.Amount,
		m.Reason,
		m.Status,
		m.DecidedBy,
		m.DecisionComment,
		m.DecidedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert withdrawal request "+m.RequestID, err)
	}
	return nil
}

func (r *PgxWithdrawalRepository) FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	query := `SELECT` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE request_id = $1;`
	m, err := scanWithdrawalRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find withdrawal request by ID "+requestID, err)
	}
	request := mapping.ToDomainWithdrawalRequest(m)
	return &request, nil
}

func (r *PgxWithdrawalRepository) ListWithdrawalRequestsByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int, offset int) ([]domain.WithdrawalRequest, error) {
	query := `SELECT` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE status = $1
		ORDER BY created_at, request_id
		LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query withdrawal requests by status "+string(status), err)
	}
	defer rows.Close()

	requests := []models.WithdrawalRequest{}
	for rows.Next() {
		m, err := scanWithdrawalRequest(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan withdrawal request row", err)
		}
		requests = append(requests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating withdrawal request rows", err)
	}
	return mapping.ToDomainWithdrawalRequestSlice(requests), nil
}

// DecideWithdrawal commits the decision by compare-and-swap on the pending
// status. For approvals the caller's withdrawal entry is appended in the same
// transaction; a floor breach rolls the decision back too.
func (r *PgxWithdrawalRepository) DecideWithdrawal(ctx context.Context, requestID string, record portsrepo.DecisionRecord, entry *domain.LedgerEntry, minBalance decimal.Decimal) (*domain.WithdrawalRequest, error) {
	newStatus := domain.WithdrawalRejected
	if record.Decision == domain.DecisionApprove {
		newStatus = domain.WithdrawalApproved
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}

	query := `
		UPDATE withdrawal_requests
		SET status = $2,
		    decided_by = $3,
		    decision_comment = $4,
		    decided_at = $5,
		    last_updated_at = $5,
		    last_updated_by = $3
		WHERE request_id = $1 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, query,
		requestID,
		string(newStatus),
		record.ActorID,
		record.Comment,
		record.DecidedAt,
		string(domain.WithdrawalPending),
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decide withdrawal request "+requestID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindWithdrawalRequestByID(ctx, requestID); findErr != nil {
			return nil, findErr
		}
		return nil, apperrors.ErrAlreadyDecided
	}

	if newStatus == domain.WithdrawalApproved && entry != nil {
		if _, err := r.ledgerRepo.appendSavingsEntryInTx(ctx, tx, *entry, minBalance); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return r.FindWithdrawalRequestByID(ctx, requestID)
}
