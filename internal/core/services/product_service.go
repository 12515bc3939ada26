package services

import (
	"context"
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
)

type productService struct {
	productRepo portsrepo.ProductRepositoryFacade
}

// NewProductService creates a new product service.
func NewProductService(productRepo portsrepo.ProductRepositoryFacade) portssvc.ProductSvcFacade {
	return &productService{productRepo: productRepo}
}

var _ portssvc.ProductSvcFacade = (*productService)(nil)

func (s *productService) CreateSavingsProduct(ctx context.Context, req dto.CreateSavingsProductRequest, actorID string) (*domain.SavingsProduct, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.AnnualRate.IsNegative() || req.MinimumBalance.IsNegative() {
		return nil, fmt.Errorf("%w: rate and minimum balance must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	product := domain.SavingsProduct{
		ProductID:      uuid.NewString(),
		Name:           req.Name,
		AnnualRate:     req.AnnualRate,
		MinimumBalance: req.MinimumBalance,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.productRepo.SaveSavingsProduct(ctx, product); err != nil {
		logger.Error("Failed to save savings product", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save savings product: %w", err)
	}

	logger.Info("Savings product created", slog.String("product_id", product.ProductID))
	return &product, nil
}

func (s *productService) CreateLoanProduct(ctx context.Context, req dto.CreateLoanProductRequest, actorID string) (*domain.LoanProduct, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.MinAmount.LessThanOrEqual(decimal.Zero) || req.MaxAmount.LessThan(req.MinAmount) {
		return nil, fmt.Errorf("%w: amount bounds are inconsistent", apperrors.ErrValidation)
	}
	if req.MaxTermMonths < req.MinTermMonths {
		return nil, fmt.Errorf("%w: term bounds are inconsistent", apperrors.ErrValidation)
	}
	if req.PenaltyRate.IsNegative() || req.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("%w: rates must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	product := domain.LoanProduct{
		ProductID:     uuid.NewString(),
		Name:          req.Name,
		AnnualRate:    req.AnnualRate,
		PenaltyRate:   req.PenaltyRate,
		MinAmount:     req.MinAmount,
		MaxAmount:     req.MaxAmount,
		MinTermMonths: req.MinTermMonths,
		MaxTermMonths: req.MaxTermMonths,
		MinGuarantors: req.MinGuarantors,
		GraceDays:     req.GraceDays,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.productRepo.SaveLoanProduct(ctx, product); err != nil {
		logger.Error("Failed to save loan product", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save loan product: %w", err)
	}

	logger.Info("Loan product created", slog.String("product_id", product.ProductID))
	return &product, nil
}

func (s *productService) GetSavingsProduct(ctx context.Context, productID string) (*domain.SavingsProduct, error) {
	return s.productRepo.FindSavingsProductByID(ctx, productID)
}

func (s *productService) GetLoanProduct(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	return s.productRepo.FindLoanProductByID(ctx, productID)
}

func (s *productService) ListSavingsProducts(ctx context.Context) ([]domain.SavingsProduct, error) {
	return s.productRepo.ListSavingsProducts(ctx)
}

func (s *productService) ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	return s.productRepo.ListLoanProducts(ctx)
}
