package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/core/services"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

type AccrualServiceTestSuite struct {
	suite.Suite
	mockProductRepo *MockProductRepository
	mockSavingsRepo *MockSavingsRepository
	mockLoanRepo    *MockLoanRepository
	mockLedgerRepo  *MockLedgerRepository
	service         portssvc.AccrualSvcFacade

	now         time.Time
	loanProduct domain.LoanProduct
}

func (suite *AccrualServiceTestSuite) SetupTest() {
	suite.mockProductRepo = new(MockProductRepository)
	suite.mockSavingsRepo = new(MockSavingsRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)

	suite.service = services.NewAccrualService(
		testRepositories(new(MockMemberRepository), suite.mockProductRepo, suite.mockSavingsRepo,
			suite.mockLoanRepo, suite.mockLedgerRepo, new(MockApplicationRepository), new(MockWithdrawalRepository)),
		events.NewPublisher(nil),
		90,
		200,
	)

	suite.now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	suite.loanProduct = domain.LoanProduct{
		ProductID:   uuid.NewString(),
		PenaltyRate: decimal.NewFromFloat(0.05),
		GraceDays:   90,
		IsActive:    true,
	}
}

func (suite *AccrualServiceTestSuite) expectNoSavings() {
	suite.mockSavingsRepo.On("ListAccountsForAccrual", mock.Anything, mock.Anything, "", 200).
		Return([]domain.SavingsAccount{}, nil).Once()
}

func (suite *AccrualServiceTestSuite) expectNoLoans() {
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, "", 200).
		Return([]domain.LoanAccount{}, nil).Once()
}

func (suite *AccrualServiceTestSuite) overdueLoan(daysOverdue int) domain.LoanAccount {
	return domain.LoanAccount{
		LoanID:             uuid.NewString(),
		MemberID:           uuid.NewString(),
		ProductID:          suite.loanProduct.ProductID,
		OutstandingBalance: decimal.NewFromInt(40000),
		MonthlyPayment:     decimal.NewFromInt(2100),
		NextPaymentDue:     suite.now.AddDate(0, 0, -daysOverdue),
		Status:             domain.LoanOverdue,
	}
}

func (suite *AccrualServiceTestSuite) TestRunScan_PenaltyChargedLinearly() {
	suite.expectNoSavings()

	loan := suite.overdueLoan(5)
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, "", 200).
		Return([]domain.LoanAccount{loan}, nil).Once()
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, loan.LoanID, 200).
		Return([]domain.LoanAccount{}, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", mock.Anything, suite.loanProduct.ProductID).
		Return(&suite.loanProduct, nil).Once()

	// 0.05 * 2100 * 5 days = 525.00
	stored := domain.LedgerEntry{AccountID: loan.LoanID}
	suite.mockLedgerRepo.On("AppendLoanEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == loan.LoanID &&
			e.EntryType == domain.EntryPenaltyAccrual &&
			e.Amount.Equal(decimal.NewFromInt(525)) &&
			e.CreatedBy == "system"
	}), domain.LoanOverdue, mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
		return u.LastPenaltyDate != nil && u.LastPenaltyDate.Equal(suite.now)
	})).Return(&stored, nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(1, result.PenaltyEntries)
	suite.Equal(0, result.MarkedDefaulted)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunScan_SameDayRerunChargesNothing() {
	suite.expectNoSavings()

	loan := suite.overdueLoan(5)
	penaltyDate := suite.now
	loan.LastPenaltyDate = &penaltyDate
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, "", 200).
		Return([]domain.LoanAccount{loan}, nil).Once()
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, loan.LoanID, 200).
		Return([]domain.LoanAccount{}, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", mock.Anything, suite.loanProduct.ProductID).
		Return(&suite.loanProduct, nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(0, result.PenaltyEntries)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendLoanEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestRunScan_ActiveLoanMarkedOverdue() {
	suite.expectNoSavings()

	loan := suite.overdueLoan(5)
	loan.Status = domain.LoanActive
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, "", 200).
		Return([]domain.LoanAccount{loan}, nil).Once()
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, loan.LoanID, 200).
		Return([]domain.LoanAccount{}, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", mock.Anything, suite.loanProduct.ProductID).
		Return(&suite.loanProduct, nil).Once()
	suite.mockLoanRepo.On("UpdateLoanState", mock.Anything, loan.LoanID, domain.LoanActive,
		mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
			return u.Status != nil && *u.Status == domain.LoanOverdue
		}), "system", suite.now).Return(nil).Once()

	stored := domain.LedgerEntry{AccountID: loan.LoanID}
	suite.mockLedgerRepo.On("AppendLoanEntry", mock.Anything, mock.Anything, domain.LoanOverdue, mock.Anything).
		Return(&stored, nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(1, result.MarkedOverdue)
	suite.Equal(1, result.PenaltyEntries)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunScan_PastGraceDefaults() {
	suite.expectNoSavings()

	loan := suite.overdueLoan(120)
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, "", 200).
		Return([]domain.LoanAccount{loan}, nil).Once()
	suite.mockLoanRepo.On("ListLoansPastDue", mock.Anything, suite.now, loan.LoanID, 200).
		Return([]domain.LoanAccount{}, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", mock.Anything, suite.loanProduct.ProductID).
		Return(&suite.loanProduct, nil).Once()
	suite.mockLoanRepo.On("UpdateLoanState", mock.Anything, loan.LoanID, domain.LoanOverdue,
		mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
			return u.Status != nil && *u.Status == domain.LoanDefaulted
		}), "system", suite.now).Return(nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(1, result.MarkedDefaulted)
	suite.Equal(0, result.PenaltyEntries)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendLoanEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestRunScan_InterestProratedDaily() {
	suite.expectNoLoans()

	product := domain.SavingsProduct{
		ProductID:  uuid.NewString(),
		AnnualRate: decimal.NewFromFloat(0.0365),
		IsActive:   true,
	}
	account := domain.SavingsAccount{
		AccountID:     uuid.NewString(),
		MemberID:      uuid.NewString(),
		ProductID:     product.ProductID,
		Status:        domain.SavingsActive,
		Balance:       decimal.NewFromInt(10000),
		LastAccrualAt: suite.now.AddDate(0, 0, -5),
	}
	suite.mockSavingsRepo.On("ListAccountsForAccrual", mock.Anything, mock.Anything, "", 200).
		Return([]domain.SavingsAccount{account}, nil).Once()
	suite.mockSavingsRepo.On("ListAccountsForAccrual", mock.Anything, mock.Anything, account.AccountID, 200).
		Return([]domain.SavingsAccount{}, nil).Once()
	suite.mockProductRepo.On("FindSavingsProductByID", mock.Anything, product.ProductID).
		Return(&product, nil).Once()

	// 10000 * 0.0365 * 5/365 = 5.00
	stored := domain.LedgerEntry{AccountID: account.AccountID}
	suite.mockLedgerRepo.On("AppendSavingsEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == account.AccountID &&
			e.EntryType == domain.EntryInterestAccrual &&
			e.Amount.Equal(decimal.NewFromInt(5)) &&
			e.CreatedBy == "system"
	}), decimal.Zero).Return(&stored, nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(1, result.InterestEntries)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunScan_FreshAccrualIsSkipped() {
	suite.expectNoLoans()

	product := domain.SavingsProduct{ProductID: uuid.NewString(), AnnualRate: decimal.NewFromFloat(0.04), IsActive: true}
	account := domain.SavingsAccount{
		AccountID:     uuid.NewString(),
		ProductID:     product.ProductID,
		Status:        domain.SavingsActive,
		Balance:       decimal.NewFromInt(10000),
		LastAccrualAt: suite.now.Add(-2 * time.Hour),
	}
	suite.mockSavingsRepo.On("ListAccountsForAccrual", mock.Anything, mock.Anything, "", 200).
		Return([]domain.SavingsAccount{account}, nil).Once()
	suite.mockSavingsRepo.On("ListAccountsForAccrual", mock.Anything, mock.Anything, account.AccountID, 200).
		Return([]domain.SavingsAccount{}, nil).Once()
	suite.mockProductRepo.On("FindSavingsProductByID", mock.Anything, product.ProductID).
		Return(&product, nil).Once()

	result, err := suite.service.RunScan(context.Background(), suite.now)

	suite.Require().NoError(err)
	suite.Equal(0, result.InterestEntries)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendSavingsEntry", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccrualServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccrualServiceTestSuite))
}
