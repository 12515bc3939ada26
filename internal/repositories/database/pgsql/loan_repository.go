package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	"github.com/sacco-suite/coop_core_app/internal/models"
	"github.com/sacco-suite/coop_core_app/internal/utils/mapping"
)

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan account data.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanAccountColumns = `
	loan_id, member_id, product_id, application_id, principal, outstanding_balance,
	monthly_payment, term_months, next_payment_due, status, last_penalty_date,
	restructured_from, created_at, created_by, last_updated_at, last_updated_by`

func scanLoanAccount(row pgx.Row) (models.LoanAccount, error) {
	var m models.LoanAccount
	err := row.Scan(
		&m.LoanID,
		&m.MemberID,
		&m.ProductID,
		&m.ApplicationID,
		&m.Principal,
		&m.OutstandingBalance,
		&m.MonthlyPayment,
		&m.TermMonths,
		&m.NextPaymentDue,
		&m.Status,
		&m.LastPenaltyDate,
		&m.RestructuredFrom,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveLoanAccount atomically inserts the loan row and its disbursement ledger
// entry. When the loan restructures an earlier one, the old loan's
// DEFAULTED -> RESTRUCTURED move commits in the same transaction, so either
// both loans change or neither does.
func (r *PgxLoanRepository) SaveLoanAccount(ctx context.Context, loan domain.LoanAccount, disbursement domain.LedgerEntry) error {
	m := mapping.ToModelLoanAccount(loan)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if m.RestructuredFrom != nil {
		restructureQuery := `
			UPDATE loan_accounts
			SET status = $2,
			    last_updated_at = $3,
			    last_updated_by = $4
			WHERE loan_id = $1 AND status = $5;
		`
		cmdTag, err := tx.Exec(ctx, restructureQuery,
			*m.RestructuredFrom,
			string(domain.LoanRestructured),
			m.LastUpdatedAt,
			m.LastUpdatedBy,
			string(domain.LoanDefaulted),
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to mark loan "+*m.RestructuredFrom+" restructured", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrInvalidTransition
		}
	}

	loanQuery := `
		INSERT INTO loan_accounts (
			loan_id, member_id, product_id, application_id, principal, outstanding_balance,
			monthly_payment, term_months, next_payment_due, status, last_penalty_date,
			restructured_from, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, loanQuery,
		m.LoanID,
		m.MemberID,
		m.ProductID,
		m.ApplicationID,
		m.Principal,
		m.OutstandingBalance,
		m.MonthlyPayment,
		m.TermMonths,
		m.NextPaymentDue,
		m.Status,
		m.LastPenaltyDate,
		m.RestructuredFrom,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert loan account "+m.LoanID, err)
	}

	if err := insertLedgerEntry(ctx, tx, mapping.ToModelLedgerEntry(disbursement)); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxLoanRepository) FindLoanAccountByID(ctx context.Context, loanID string) (*domain.LoanAccount, error) {
	query := `SELECT` + loanAccountColumns + `
		FROM loan_accounts
		WHERE loan_id = $1;`
	m, err := scanLoanAccount(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find loan account by ID "+loanID, err)
	}
	loan := mapping.ToDomainLoanAccount(m)
	return &loan, nil
}

func (r *PgxLoanRepository) FindLoanAccountsByMemberID(ctx context.Context, memberID string) ([]domain.LoanAccount, error) {
	query := `SELECT` + loanAccountColumns + `
		FROM loan_accounts
		WHERE member_id = $1
		ORDER BY created_at, loan_id;`
	rows, err := r.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loan accounts for member "+memberID, err)
	}
	defer rows.Close()

	loans := []models.LoanAccount{}
	for rows.Next() {
		m, err := scanLoanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan account row for member "+memberID, err)
		}
		loans = append(loans, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan account rows for member "+memberID, err)
	}
	return mapping.ToDomainLoanAccountSlice(loans), nil
}

// ListLoansPastDue returns active or overdue loans whose next payment due
// date is before asOf, keyed by loan ID after the cursor.
func (r *PgxLoanRepository) ListLoansPastDue(ctx context.Context, asOf time.Time, afterLoanID string, limit int) ([]domain.LoanAccount, error) {
	query := `SELECT` + loanAccountColumns + `
		FROM loan_accounts
		WHERE status = ANY($1)
		  AND next_payment_due < $2
		  AND loan_id > $3
		ORDER BY loan_id
		LIMIT $4;`
	statuses := []string{string(domain.LoanActive), string(domain.LoanOverdue)}
	rows, err := r.Pool.Query(ctx, query, statuses, asOf, afterLoanID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query past-due loans", err)
	}
	defer rows.Close()

	loans := []models.LoanAccount{}
	for rows.Next() {
		m, err := scanLoanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan past-due loan row", err)
		}
		loans = append(loans, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating past-due loan rows", err)
	}
	return mapping.ToDomainLoanAccountSlice(loans), nil
}

// UpdateLoanState applies the update guarded by the expected current status.
func (r *PgxLoanRepository) UpdateLoanState(ctx context.Context, loanID string, expected domain.LoanStatus, update portsrepo.LoanStateUpdate, updatedBy string, at time.Time) error {
	query := `
		UPDATE loan_accounts
		SET last_updated_at = $3,
		    last_updated_by = $4`
	args := []interface{}{loanID, string(expected), at, updatedBy}

	if update.Status != nil {
		args = append(args, string(*update.Status))
		query += ",\n		    status = $" + strconv.Itoa(len(args))
	}
	if update.NextPaymentDue != nil {
		args = append(args, *update.NextPaymentDue)
		query += ",\n		    next_payment_due = $" + strconv.Itoa(len(args))
	}
	if update.LastPenaltyDate != nil {
		args = append(args, *update.LastPenaltyDate)
		query += ",\n		    last_penalty_date = $" + strconv.Itoa(len(args))
	}
	query += `
		WHERE loan_id = $1 AND status = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update loan state for "+loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the loan does not exist or it left the expected state.
		if _, findErr := r.FindLoanAccountByID(ctx, loanID); findErr != nil {
			return findErr
		}
		return apperrors.ErrInvalidTransition
	}
	return nil
}
