package services

import (
	"context"
	"errors"
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

// accountService provides account lifecycle and read operations.
type accountService struct {
	memberRepo  portsrepo.MemberRepositoryFacade
	productRepo portsrepo.ProductRepositoryFacade
	savingsRepo portsrepo.SavingsRepositoryFacade
	loanRepo    portsrepo.LoanRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(
	memberRepo portsrepo.MemberRepositoryFacade,
	productRepo portsrepo.ProductRepositoryFacade,
	savingsRepo portsrepo.SavingsRepositoryFacade,
	loanRepo portsrepo.LoanRepositoryFacade,
) portssvc.AccountSvcFacade {
	return &accountService{
		memberRepo:  memberRepo,
		productRepo: productRepo,
		savingsRepo: savingsRepo,
		loanRepo:    loanRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// OpenSavingsAccount creates a savings account for an active member. The
// initial deposit must clear the product's minimum balance; a zero deposit
// is allowed only when the product has no floor.
func (s *accountService) OpenSavingsAccount(ctx context.Context, req dto.OpenSavingsAccountRequest, actorID string) (*domain.SavingsAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member %s: %w", req.MemberID, err)
	}
	if !member.CanTransact() {
		return nil, fmt.Errorf("%w: member %s is %s", apperrors.ErrAccountInactive, member.MemberID, member.Status)
	}

	product, err := s.productRepo.FindSavingsProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: savings product %s", apperrors.ErrInvalidProduct, req.ProductID)
		}
		return nil, fmt.Errorf("failed to find savings product %s: %w", req.ProductID, err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s is inactive", apperrors.ErrInvalidProduct, product.ProductID)
	}
	if req.InitialDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: initial deposit must not be negative", apperrors.ErrValidation)
	}
	if req.InitialDeposit.LessThan(product.MinimumBalance) {
		return nil, fmt.Errorf("%w: initial deposit %s is below product minimum balance %s",
			apperrors.ErrInvalidProduct, req.InitialDeposit.String(), product.MinimumBalance.String())
	}

	now := time.Now().UTC()
	account := domain.SavingsAccount{
		AccountID: uuid.NewString(),
		MemberID:  member.MemberID,
		ProductID: product.ProductID,
		Status:    domain.SavingsActive,
		Balance:   decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	var initial *domain.LedgerEntry
	if req.InitialDeposit.IsPositive() {
		initial = &domain.LedgerEntry{
			EntryID:          uuid.NewString(),
			AccountID:        account.AccountID,
			AccountKind:      domain.KindSavings,
			Sequence:         1,
			EntryType:        domain.EntryDeposit,
			Amount:           req.InitialDeposit,
			EntryDate:        now,
			Reference:        "initial deposit",
			ResultingBalance: req.InitialDeposit,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		account.Balance = req.InitialDeposit
	}

	if err := s.savingsRepo.SaveSavingsAccount(ctx, account, initial); err != nil {
		logger.Error("Failed to save savings account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save savings account: %w", err)
	}

	logger.Info("Savings account opened",
		slog.String("account_id", account.AccountID),
		slog.String("member_id", member.MemberID))
	return &account, nil
}

func (s *accountService) GetSavingsAccount(ctx context.Context, accountID string) (*domain.SavingsAccount, error) {
	return s.savingsRepo.FindSavingsAccountByID(ctx, accountID)
}

func (s *accountService) GetLoanAccount(ctx context.Context, loanID string) (*domain.LoanAccount, error) {
	return s.loanRepo.FindLoanAccountByID(ctx, loanID)
}

// GetAccountSummary resolves either account kind into the dashboard summary.
func (s *accountService) GetAccountSummary(ctx context.Context, accountID string) (*dto.AccountSummaryResponse, error) {
	savings, err := s.savingsRepo.FindSavingsAccountByID(ctx, accountID)
	if err == nil {
		product, perr := s.productRepo.FindSavingsProductByID(ctx, savings.ProductID)
		if perr != nil {
			return nil, fmt.Errorf("failed to find product for account %s: %w", accountID, perr)
		}
		return &dto.AccountSummaryResponse{
			AccountID:      savings.AccountID,
			AccountKind:    string(domain.KindSavings),
			MemberID:       savings.MemberID,
			Status:         string(savings.Status),
			Balance:        savings.Balance,
			ProductID:      product.ProductID,
			ProductName:    product.Name,
			AnnualRate:     product.AnnualRate,
			MinimumBalance: product.MinimumBalance,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	loan, err := s.loanRepo.FindLoanAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	product, err := s.productRepo.FindLoanProductByID(ctx, loan.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product for loan %s: %w", accountID, err)
	}
	nextDue := loan.NextPaymentDue
	return &dto.AccountSummaryResponse{
		AccountID:      loan.LoanID,
		AccountKind:    string(domain.KindLoan),
		MemberID:       loan.MemberID,
		Status:         string(loan.Status),
		Balance:        loan.OutstandingBalance,
		ProductID:      product.ProductID,
		ProductName:    product.Name,
		AnnualRate:     product.AnnualRate,
		MonthlyPayment: loan.MonthlyPayment,
		NextPaymentDue: &nextDue,
		DaysOverdue:    loan.DaysOverdue(time.Now().UTC()),
	}, nil
}

func (s *accountService) ListMemberAccounts(ctx context.Context, memberID string) ([]domain.SavingsAccount, []domain.LoanAccount, error) {
	savings, err := s.savingsRepo.FindSavingsAccountsByMemberID(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list savings accounts for member %s: %w", memberID, err)
	}
	loans, err := s.loanRepo.FindLoanAccountsByMemberID(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list loan accounts for member %s: %w", memberID, err)
	}
	return savings, loans, nil
}
