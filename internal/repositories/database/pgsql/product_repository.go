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

type PgxProductRepository struct {
	BaseRepository
}

// newPgxProductRepository creates a new repository for savings and loan
// product data.
func newPgxProductRepository(pool *pgxpool.Pool) portsrepo.ProductRepositoryFacade {
	return &PgxProductRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

func (r *PgxProductRepository) SaveSavingsProduct(ctx context.Context, product domain.SavingsProduct) error {
	m := mapping.ToModelSavingsProduct(product)
	query := `
		INSERT INTO savings_products (
			product_id, name, annual_rate, minimum_balance, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProductID, m.Name, m.AnnualRate, m.MinimumBalance, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert savings product "+m.ProductID, err)
	}
	return nil
}

func (r *PgxProductRepository) FindSavingsProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error) {
	query := `
		SELECT product_id, name, annual_rate, minimum_balance, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM savings_products
		WHERE product_id = $1;
	`
	var m models.SavingsProduct
	err := r.Pool.QueryRow(ctx, query, productID).Scan(
		&m.ProductID, &m.Name, &m.AnnualRate, &m.MinimumBalance, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find savings product by ID "+productID, err)
	}
	product := mapping.ToDomainSavingsProduct(m)
	return &product, nil
}

func (r *PgxProductRepository) ListSavingsProducts(ctx context.Context) ([]domain.SavingsProduct, error) {
	query := `
		SELECT product_id, name, annual_rate, minimum_balance, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM savings_products
		ORDER BY name, product_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query savings products", err)
	}
	defer rows.Close()

	products := []domain.SavingsProduct{}
	for rows.Next() {
		var m models.SavingsProduct
		err := rows.Scan(
			&m.ProductID, &m.Name, &m.AnnualRate, &m.MinimumBalance, &m.IsActive,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan savings product row", err)
		}
		products = append(products, mapping.ToDomainSavingsProduct(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating savings product rows", err)
	}
	return products, nil
}

func (r *PgxProductRepository) SaveLoanProduct(ctx context.Context, product domain.LoanProduct) error {
	m := mapping.ToModelLoanProduct(product)
	query := `
		INSERT INTO loan_products (
			product_id, name, annual_rate, penalty_rate, min_amount, max_amount,
			min_term_months, max_term_months, min_guarantors, grace_days, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProductID, m.Name, m.AnnualRate, m.PenaltyRate, m.MinAmount, m.MaxAmount,
		m.MinTermMonths, m.MaxTermMonths, m.MinGuarantors, m.GraceDays, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert loan product "+m.ProductID, err)
	}
	return nil
}

func (r *PgxProductRepository) FindLoanProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	query := `
		SELECT product_id, name, annual_rate, penalty_rate, min_amount, max_amount,
		       min_term_months, max_term_months, min_guarantors, grace_days, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM loan_products
		WHERE product_id = $1;
	`
	var m models.LoanProduct
	err := r.Pool.QueryRow(ctx, query, productID).Scan(
		&m.ProductID, &m.Name, &m.AnnualRate, &m.PenaltyRate, &m.MinAmount, &m.MaxAmount,
		&m.MinTermMonths, &m.MaxTermMonths, &m.MinGuarantors, &m.GraceDays, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find loan product by ID "+productID, err)
	}
	product := mapping.ToDomainLoanProduct(m)
	return &product, nil
}

func (r *PgxProductRepository) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	query := `
		SELECT product_id, name, annual_rate, penalty_rate, min_amount, max_amount,
		       min_term_months, max_term_months, min_guarantors, grace_days, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM loan_products
		ORDER BY name, product_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loan products", err)
	}
	defer rows.Close()

	products := []domain.LoanProduct{}
	for rows.Next() {
		var m models.LoanProduct
		err := rows.Scan(
			&m.ProductID, &m.Name, &m.AnnualRate, &m.PenaltyRate, &m.MinAmount, &m.MaxAmount,
			&m.MinTermMonths, &m.MaxTermMonths, &m.MinGuarantors, &m.GraceDays, &m.IsActive,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan product row", err)
		}
		products = append(products, mapping.ToDomainLoanProduct(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan product rows", err)
	}
	return products, nil
}
