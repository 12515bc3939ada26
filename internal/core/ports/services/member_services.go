package services

import (
	"context"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/dto"
)

// MemberSvcFacade defines the member management operations.
type MemberSvcFacade interface {
	CreateMember(ctx context.Context, req dto.CreateMemberRequest, actorID string) (*domain.Member, error)
	GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
	ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error)
	// UpdateMemberStatus is the explicit admin action behind status and
	// category changes.
	UpdateMemberStatus(ctx context.Context, memberID string, req dto.UpdateMemberStatusRequest, actorID string) (*domain.Member, error)
}

// ProductSvcFacade defines product catalogue operations.
type ProductSvcFacade interface {
	CreateSavingsProduct(ctx context.Context, req dto.CreateSavingsProductRequest, actorID string) (*domain.SavingsProduct, error)
	CreateLoanProduct(ctx context.Context, req dto.CreateLoanProductRequest, actorID string) (*domain.LoanProduct, error)
	GetSavingsProduct(ctx context.Context, productID string) (*domain.SavingsProduct, error)
	GetLoanProduct(ctx context.Context, productID string) (*domain.LoanProduct, error)
	ListSavingsProducts(ctx context.Context) ([]domain.SavingsProduct, error)
	ListLoanProducts(ctx context.Context) ([]domain.LoanProduct, error)
}
