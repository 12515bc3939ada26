package repositories

import (
	"context"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
)

// ProductRepositoryFacade defines persistence operations for savings and
// loan products.
type ProductRepositoryFacade interface {
	SaveSavingsProduct(ctx context.Context, product domain.SavingsProduct) error
	FindSavingsProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error)
	ListSavingsProducts(ctx context.Context) ([]domain.SavingsProduct, error)

	SaveLoanProduct(ctx context.Context, product domain.LoanProduct) error
	FindLoanProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error)
	ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error)
}
