package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	"github.com/sacco-suite/coop_core_app/internal/models"
	"github.com/sacco-suite/coop_core_app/internal/utils/mapping"
)

type PgxSavingsRepository struct {
	BaseRepository
}

// newPgxSavingsRepository creates a new repository for savings account data.
func newPgxSavingsRepository(pool *pgxpool.Pool) portsrepo.SavingsRepositoryFacade {
	return &PgxSavingsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SavingsRepositoryFacade = (*PgxSavingsRepository)(nil)

const savingsAccountColumns = `
	account_id, member_id, product_id, status, balance, last_accrual_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanSavingsAccount(row pgx.Row) (models.SavingsAccount, error) {
	var m models.SavingsAccount
	err := row.Scan(
		&m.AccountID,
		&m.MemberID,
		&m.ProductID,
		&m.Status,
		&m.Balance,
		&m.LastAccrualAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveSavingsAccount inserts the account row and, when initialDeposit is
// non-nil, the funding ledger entry in the same transaction. The account
// balance starts at the funding amount, so account and ledger are consistent
// from the first moment.
func (r *PgxSavingsRepository) SaveSavingsAccount(ctx context.Context, account domain.SavingsAccount, initialDeposit *domain.LedgerEntry) error {
	m := mapping.ToModelSavingsAccount(account)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accountQuery := `
		INSERT INTO savings_accounts (
			account_id, member_id, product_id, status, balance, last_accrual_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, accountQuery,
		m.AccountID,
		m.MemberID,
		m.ProductID,
		m.Status,
		m.Balance,
		m.LastAccrualAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert savings account "+m.AccountID, err)
	}

	if initialDeposit != nil {
		if err := insertLedgerEntry(ctx, tx, mapping.ToModelLedgerEntry(*initialDeposit)); err != nil {
			return err
		}
		balanceQuery := `UPDATE savings_accounts SET balance = $2 WHERE account_id = $1;`
		if _, err := tx.Exec(ctx, balanceQuery, m.AccountID, initialDeposit.ResultingBalance); err != nil {
			return apperrors.NewAppError(500, "failed to set opening balance for account "+m.AccountID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSavingsRepository) FindSavingsAccountByID(ctx context.Context, accountID string) (*domain.SavingsAccount, error) {
	query := `SELECT` + savingsAccountColumns + `
		FROM savings_accounts
		WHERE account_id = $1;`
	m, err := scanSavingsAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find savings account by ID "+accountID, err)
	}
	account := mapping.ToDomainSavingsAccount(m)
	return &account, nil
}

func (r *PgxSavingsRepository) FindSavingsAccountsByMemberID(ctx context.Context, memberID string) ([]domain.SavingsAccount, error) {
	query := `SELECT` + savingsAccountColumns + `
		FROM savings_accounts
		WHERE member_id = $1
		ORDER BY created_at, account_id;`
	rows, err := r.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query savings accounts for member "+memberID, err)
	}
	defer rows.Close()

	accounts := []models.SavingsAccount{}
	for rows.Next() {
		m, err := scanSavingsAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan savings account row for member "+memberID, err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating savings account rows for member "+memberID, err)
	}
	return mapping.ToDomainSavingsAccountSlice(accounts), nil
}

// ListAccountsForAccrual returns active accounts whose last accrual predates
// the cutoff (or that never accrued), keyed by account ID after the cursor.
func (r *PgxSavingsRepository) ListAccountsForAccrual(ctx context.Context, before time.Time, afterAccountID string, limit int) ([]domain.SavingsAccount, error) {
	query := `SELECT` + savingsAccountColumns + `
		FROM savings_accounts
		WHERE status = $1
		  AND (last_accrual_at IS NULL OR last_accrual_at < $2)
		  AND account_id > $3
		ORDER BY account_id
		LIMIT $4;`
	rows, err := r.Pool.Query(ctx, query, string(domain.SavingsActive), before, afterAccountID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts for accrual", err)
	}
	defer rows.Close()

	accounts := []models.SavingsAccount{}
	for rows.Next() {
		m, err := scanSavingsAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row for accrual", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows for accrual", err)
	}
	return mapping.ToDomainSavingsAccountSlice(accounts), nil
}

func (r *PgxSavingsRepository) UpdateSavingsStatus(ctx context.Context, accountID string, status domain.SavingsStatus, updatedBy string, at time.Time) error {
	query := `
		UPDATE savings_accounts
		SET status = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, string(status), at, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update savings account status for "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("savings account " + accountID + " not found for update")
	}
	return nil
}
