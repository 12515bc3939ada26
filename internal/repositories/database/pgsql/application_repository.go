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

type PgxApplicationRepository struct {
	BaseRepository
}

// newPgxApplicationRepository creates a new repository for loan application
// data.
func newPgxApplicationRepository(pool *pgxpool.Pool) portsrepo.ApplicationRepositoryFacade {
	return &PgxApplicationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ApplicationRepositoryFacade = (*PgxApplicationRepository)(nil)

const applicationColumns = `
	application_id, member_id, product_id, requested_amount, term_months, purpose,
	guarantors, risk_score, debt_to_income, status, decided_by, decision_comment,
	decided_at, created_at, created_by, last_updated_at, last_updated_by`

func scanApplication(row pgx.Row) (models.LoanApplication, error) {
	var m models.LoanApplication
	err := row.Scan(
		&m.ApplicationID,
		&m.MemberID,
		&m.ProductID,
		&m.RequestedAmount,
		&m.TermMonths,
		&m.Purpose,
		&m.Guarantors,
		&m.RiskScore,
		&m.DebtToIncome,
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

func (r *PgxApplicationRepository) SaveApplication(ctx context.Context, application domain.LoanApplication) error {
	m, err := mapping.ToModelLoanApplication(application)
	if err != nil {
		return apperrors.NewAppError(500, "failed to map application "+application.ApplicationID, err)
	}
	query := `
		INSERT INTO loan_applications (
			application_id, member_id, product_id, requested_amount, term_months, purpose,
			guarantors, risk_score, debt_to_income, status, decided_by, decision_comment,
			decided_at, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.ApplicationID,
		m.MemberID,
		m.ProductID,
		m.RequestedAmount,
		m.TermMonths,
		m.Purpose,
		m.Guarantors,
		m.RiskScore,
		m.DebtToIncome,
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
		return apperrors.NewAppError(500, "failed to insert application "+m.ApplicationID, err)
	}
	return nil
}

func (r *PgxApplicationRepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan_applications
		WHERE application_id = $1;`
	m, err := scanApplication(r.Pool.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find application by ID "+applicationID, err)
	}
	application, err := mapping.ToDomainLoanApplication(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to map application "+applicationID, err)
	}
	return &application, nil
}

func (r *PgxApplicationRepository) ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus, limit int, offset int) ([]domain.LoanApplication, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan_applications
		WHERE status = $1
		ORDER BY created_at, application_id
		LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query applications by status "+string(status), err)
	}
	defer rows.Close()

	applications := []domain.LoanApplication{}
	for rows.Next() {
		m, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan application row", err)
		}
		application, err := mapping.ToDomainLoanApplication(m)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to map application "+m.ApplicationID, err)
		}
		applications = append(applications, application)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating application rows", err)
	}
	return applications, nil
}

// MarkUnderReview moves PENDING -> UNDER_REVIEW, conditionally on the row
// still being pending.
func (r *PgxApplicationRepository) MarkUnderReview(ctx context.Context, applicationID string, actorID string, at time.Time) (*domain.LoanApplication, error) {
	query := `
		UPDATE loan_applications
		SET status = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE application_id = $1 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		applicationID,
		string(domain.ApplicationUnderReview),
		at,
		actorID,
		string(domain.ApplicationPending),
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to mark application "+applicationID+" under review", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, r.decisionConflict(ctx, applicationID)
	}
	return r.FindApplicationByID(ctx, applicationID)
}

// DecideApplication commits the verdict if and only if the row is still
// decidable. The WHERE clause is the compare-and-swap: of two racing
// reviewers exactly one update matches a row.
func (r *PgxApplicationRepository) DecideApplication(ctx context.Context, applicationID string, record portsrepo.DecisionRecord) (*domain.LoanApplication, error) {
	newStatus := domain.ApplicationRejected
	if record.Decision == domain.DecisionApprove {
		newStatus = domain.ApplicationApproved
	}
	query := `
		UPDATE loan_applications
		SET status = $2,
		    decided_by = $3,
		    decision_comment = $4,
		    decided_at = $5,
		    last_updated_at = $5,
		    last_updated_by = $3
		WHERE application_id = $1 AND status = ANY($6);
	`
	decidable := []string{string(domain.ApplicationPending), string(domain.ApplicationUnderReview)}
	cmdTag, err := r.Pool.Exec(ctx, query,
		applicationID,
		string(newStatus),
		record.ActorID,
		record.Comment,
		record.DecidedAt,
		decidable,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decide application "+applicationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, r.decisionConflict(ctx, applicationID)
	}
	return r.FindApplicationByID(ctx, applicationID)
}

// decisionConflict distinguishes a missing application from one already
// decided.
func (r *PgxApplicationRepository) decisionConflict(ctx context.Context, applicationID string) error {
	if _, err := r.FindApplicationByID(ctx, applicationID); err != nil {
		return err
	}
	return apperrors.ErrAlreadyDecided
}
