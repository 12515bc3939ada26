package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	"github.com/sacco-suite/coop_core_app/internal/models"
	"github.com/sacco-suite/coop_core_app/internal/utils/mapping"
)

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member data.
func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberRepositoryFacade {
	return &PgxMemberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

func (r *PgxMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	modelMember := mapping.ToModelMember(member)
	query := `
		INSERT INTO members (
			member_id, name, email, phone, status, category, declared_monthly_income,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelMember.MemberID,
		modelMember.Name,
		modelMember.Email,
		modelMember.Phone,
		modelMember.Status,
		modelMember.Category,
		modelMember.DeclaredMonthlyIncome,
		modelMember.CreatedAt,
		modelMember.CreatedBy,
		modelMember.LastUpdatedAt,
		modelMember.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert member "+modelMember.MemberID, err)
	}
	return nil
}

func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `
		SELECT member_id, name, email, phone, status, category, declared_monthly_income,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM members
		WHERE member_id = $1;
	`
	var m models.Member
	err := r.Pool.QueryRow(ctx, query, memberID).Scan(
		&m.MemberID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Status,
		&m.Category,
		&m.DeclaredMonthlyIncome,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find member by ID "+memberID, err)
	}
	member := mapping.ToDomainMember(m)
	return &member, nil
}

func (r *PgxMemberRepository) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	query := `
		SELECT member_id, name, email, phone, status, category, declared_monthly_income,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM members
		ORDER BY created_at DESC, member_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		err := rows.Scan(
			&m.MemberID,
			&m.Name,
			&m.Email,
			&m.Phone,
			&m.Status,
			&m.Category,
			&m.DeclaredMonthlyIncome,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan member row", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating member rows", err)
	}
	return mapping.ToDomainMemberSlice(members), nil
}

func (r *PgxMemberRepository) UpdateMember(ctx context.Context, member domain.Member) error {
	modelMember := mapping.ToModelMember(member)
	query := `
		UPDATE members
		SET name = $2,
		    email = $3,
		    phone = $4,
		    status = $5,
		    category = $6,
		    declared_monthly_income = $7,
		    last_updated_at = $8,
		    last_updated_by = $9
		WHERE member_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelMember.MemberID,
		modelMember.Name,
		modelMember.Email,
		modelMember.Phone,
		modelMember.Status,
		modelMember.Category,
		modelMember.DeclaredMonthlyIncome,
		modelMember.LastUpdatedAt,
		modelMember.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update member "+modelMember.MemberID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("member " + modelMember.MemberID + " not found for update")
	}
	return nil
}
