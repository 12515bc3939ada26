package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/core/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/platform/config"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockMemberRepo     *MockMemberRepository
	mockProductRepo    *MockProductRepository
	mockSavingsRepo    *MockSavingsRepository
	mockLoanRepo       *MockLoanRepository
	mockLedgerRepo     *MockLedgerRepository
	mockWithdrawalRepo *MockWithdrawalRepository
	service            portssvc.TransactionSvcFacade

	member  domain.Member
	product domain.SavingsProduct
	account domain.SavingsAccount
	actorID string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.mockProductRepo = new(MockProductRepository)
	suite.mockSavingsRepo = new(MockSavingsRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockWithdrawalRepo = new(MockWithdrawalRepository)

	suite.service = services.NewTransactionService(
		testRepositories(suite.mockMemberRepo, suite.mockProductRepo, suite.mockSavingsRepo,
			suite.mockLoanRepo, suite.mockLedgerRepo, new(MockApplicationRepository), suite.mockWithdrawalRepo),
		events.NewPublisher(nil),
		decimal.NewFromInt(10000),
		config.OverpaymentCarryForward,
	)

	suite.actorID = uuid.NewString()
	suite.member = domain.Member{
		MemberID: uuid.NewString(),
		Name:     "Amina Okafor",
		Status:   domain.MemberActive,
		Category: domain.CategoryRegular,
	}
	suite.product = domain.SavingsProduct{
		ProductID:      uuid.NewString(),
		Name:           "Regular Savings",
		AnnualRate:     decimal.NewFromFloat(0.04),
		MinimumBalance: decimal.NewFromInt(100),
		IsActive:       true,
	}
	suite.account = domain.SavingsAccount{
		AccountID: uuid.NewString(),
		MemberID:  suite.member.MemberID,
		ProductID: suite.product.ProductID,
		Status:    domain.SavingsActive,
		Balance:   decimal.NewFromInt(14000),
	}
}

func (suite *TransactionServiceTestSuite) expectSavingsLookups() {
	suite.mockSavingsRepo.On("FindSavingsAccountByID", mock.Anything, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockMemberRepo.On("FindMemberByID", mock.Anything, suite.member.MemberID).Return(&suite.member, nil).Once()
	suite.mockProductRepo.On("FindSavingsProductByID", mock.Anything, suite.product.ProductID).Return(&suite.product, nil).Once()
}

func (suite *TransactionServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	suite.expectSavingsLookups()

	stored := domain.LedgerEntry{
		AccountID:        suite.account.AccountID,
		Sequence:         7,
		EntryType:        domain.EntryDeposit,
		Amount:           decimal.NewFromInt(1000),
		ResultingBalance: decimal.NewFromInt(15000),
	}
	suite.mockLedgerRepo.On("AppendSavingsEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == suite.account.AccountID &&
			e.EntryType == domain.EntryDeposit &&
			e.Amount.Equal(decimal.NewFromInt(1000)) &&
			e.CreatedBy == suite.actorID
	}), suite.product.MinimumBalance).Return(&stored, nil).Once()

	entry, err := suite.service.Deposit(ctx, dto.DepositRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.NewFromInt(1000),
		Method:    "CASH",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.True(entry.ResultingBalance.Equal(decimal.NewFromInt(15000)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeposit_NonPositiveAmount() {
	_, err := suite.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.Zero,
		Method:    "CASH",
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendSavingsEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestDeposit_DormantAccount() {
	suite.account.Status = domain.SavingsDormant
	suite.mockSavingsRepo.On("FindSavingsAccountByID", mock.Anything, suite.account.AccountID).Return(&suite.account, nil).Once()

	_, err := suite.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.NewFromInt(50),
		Method:    "CASH",
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountInactive)
}

func (suite *TransactionServiceTestSuite) TestWithdraw_Success() {
	ctx := context.Background()
	suite.expectSavingsLookups()

	stored := domain.LedgerEntry{
		AccountID:        suite.account.AccountID,
		Sequence:         8,
		EntryType:        domain.EntryWithdrawal,
		Amount:           decimal.NewFromInt(-500),
		ResultingBalance: decimal.NewFromInt(13500),
	}
	suite.mockLedgerRepo.On("AppendSavingsEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryType == domain.EntryWithdrawal && e.Amount.Equal(decimal.NewFromInt(-500))
	}), suite.product.MinimumBalance).Return(&stored, nil).Once()

	outcome, err := suite.service.Withdraw(ctx, dto.WithdrawRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.NewFromInt(500),
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.Entry)
	suite.Nil(outcome.Request)
	suite.True(outcome.Entry.ResultingBalance.Equal(decimal.NewFromInt(13500)))
}

func (suite *TransactionServiceTestSuite) TestWithdraw_BelowMinimumBalance() {
	// Balance 14000, floor 100: withdrawing 13950 would leave 50.
	suite.expectSavingsLookups()

	_, err := suite.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.NewFromInt(13950),
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrBelowMinimumBalance)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendSavingsEntry", mock.Anything, mock.Anything, mock.Anything)
	suite.mockWithdrawalRepo.AssertNotCalled(suite.T(), "SaveWithdrawalRequest", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestWithdraw_AboveThresholdBecomesPending() {
	suite.expectSavingsLookups()

	suite.mockWithdrawalRepo.On("SaveWithdrawalRequest", mock.Anything, mock.MatchedBy(func(r domain.WithdrawalRequest) bool {
		return r.AccountID == suite.account.AccountID &&
			r.Amount.Equal(decimal.NewFromInt(12000)) &&
			r.Status == domain.WithdrawalPending
	})).Return(nil).Once()

	outcome, err := suite.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID: suite.account.AccountID,
		Amount:    decimal.NewFromInt(12000),
		Reason:    "school fees",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Nil(outcome.Entry)
	suite.Require().NotNil(outcome.Request)
	suite.Equal(domain.WithdrawalPending, outcome.Request.Status)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendSavingsEntry", mock.Anything, mock.Anything, mock.Anything)
	suite.mockWithdrawalRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestWithdraw_AdminOverrideSkipsFloorAndThreshold() {
	suite.expectSavingsLookups()

	stored := domain.LedgerEntry{AccountID: suite.account.AccountID, Sequence: 9, AdminOverride: true}
	suite.mockLedgerRepo.On("AppendSavingsEntry", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AdminOverride && e.Amount.Equal(decimal.NewFromInt(-13950))
	}), suite.product.MinimumBalance).Return(&stored, nil).Once()

	outcome, err := suite.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID:     suite.account.AccountID,
		Amount:        decimal.NewFromInt(13950),
		AdminOverride: true,
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.Entry)
	suite.True(outcome.Entry.AdminOverride)
}

func (suite *TransactionServiceTestSuite) activeLoan() domain.LoanAccount {
	return domain.LoanAccount{
		LoanID:             uuid.NewString(),
		MemberID:           suite.member.MemberID,
		ProductID:          uuid.NewString(),
		Principal:          decimal.NewFromInt(20000),
		OutstandingBalance: decimal.NewFromInt(15000),
		MonthlyPayment:     decimal.NewFromInt(850),
		TermMonths:         24,
		NextPaymentDue:     time.Now().UTC().AddDate(0, 0, 10),
		Status:             domain.LoanActive,
	}
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_ReducesBalanceKeepsActive() {
	ctx := context.Background()
	loan := suite.activeLoan()
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()

	stored := domain.LedgerEntry{
		AccountID:        loan.LoanID,
		Sequence:         2,
		EntryType:        domain.EntryRepayment,
		Amount:           decimal.NewFromInt(-850),
		ResultingBalance: decimal.NewFromInt(14150),
	}
	suite.mockLedgerRepo.On("AppendRepayment", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == loan.LoanID &&
			e.EntryType == domain.EntryRepayment &&
			e.Amount.Equal(decimal.NewFromInt(-850))
	}), domain.LoanActive, mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
		// A full monthly payment advances the due date; status is unchanged.
		return u.Status == nil && u.NextPaymentDue != nil
	}), []domain.LedgerEntry(nil)).Return(&stored, nil).Once()

	entry, err := suite.service.RecordRepayment(ctx, dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(850),
		Method: "TRANSFER",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.True(entry.ResultingBalance.Equal(decimal.NewFromInt(14150)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_FullPayoffClosesLoan() {
	loan := suite.activeLoan()
	loan.OutstandingBalance = decimal.NewFromInt(850)
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()

	stored := domain.LedgerEntry{AccountID: loan.LoanID, ResultingBalance: decimal.Zero}
	suite.mockLedgerRepo.On("AppendRepayment", mock.Anything, mock.Anything, domain.LoanActive,
		mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
			return u.Status != nil && *u.Status == domain.LoanClosed && u.NextPaymentDue == nil
		}), []domain.LedgerEntry(nil)).Return(&stored, nil).Once()

	_, err := suite.service.RecordRepayment(context.Background(), dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(850),
		Method: "CASH",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_CatchUpBringsOverdueCurrent() {
	loan := suite.activeLoan()
	loan.Status = domain.LoanOverdue
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()

	stored := domain.LedgerEntry{AccountID: loan.LoanID}
	suite.mockLedgerRepo.On("AppendRepayment", mock.Anything, mock.Anything, domain.LoanOverdue,
		mock.MatchedBy(func(u portsrepo.LoanStateUpdate) bool {
			return u.Status != nil && *u.Status == domain.LoanActive
		}), []domain.LedgerEntry(nil)).Return(&stored, nil).Once()

	_, err := suite.service.RecordRepayment(context.Background(), dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(900),
		Method: "CASH",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_OverpaymentCarriesForward() {
	loan := suite.activeLoan()
	loan.OutstandingBalance = decimal.NewFromInt(200)
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()
	suite.mockSavingsRepo.On("FindSavingsAccountsByMemberID", mock.Anything, loan.MemberID).
		Return([]domain.SavingsAccount{suite.account}, nil).Once()

	stored := domain.LedgerEntry{AccountID: loan.LoanID, ResultingBalance: decimal.Zero}
	suite.mockLedgerRepo.On("AppendRepayment", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		// The repayment leg is capped at the outstanding balance.
		return e.Amount.Equal(decimal.NewFromInt(-200))
	}), domain.LoanActive, mock.Anything, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
		return len(entries) == 1 &&
			entries[0].EntryType == domain.EntryCreditOverflow &&
			entries[0].AccountID == suite.account.AccountID &&
			entries[0].Amount.Equal(decimal.NewFromInt(300))
	})).Return(&stored, nil).Once()

	_, err := suite.service.RecordRepayment(context.Background(), dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(500),
		Method: "CASH",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_OverpaymentRefundPairsEntries() {
	refundSvc := services.NewTransactionService(
		testRepositories(suite.mockMemberRepo, suite.mockProductRepo, suite.mockSavingsRepo,
			suite.mockLoanRepo, suite.mockLedgerRepo, new(MockApplicationRepository), suite.mockWithdrawalRepo),
		events.NewPublisher(nil),
		decimal.NewFromInt(10000),
		config.OverpaymentRefund,
	)

	loan := suite.activeLoan()
	loan.OutstandingBalance = decimal.NewFromInt(200)
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()
	suite.mockSavingsRepo.On("FindSavingsAccountsByMemberID", mock.Anything, loan.MemberID).
		Return([]domain.SavingsAccount{suite.account}, nil).Once()

	stored := domain.LedgerEntry{AccountID: loan.LoanID}
	suite.mockLedgerRepo.On("AppendRepayment", mock.Anything, mock.Anything, domain.LoanActive,
		mock.Anything, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
			return len(entries) == 2 &&
				entries[0].EntryType == domain.EntryCreditOverflow &&
				entries[0].Amount.Equal(decimal.NewFromInt(300)) &&
				entries[1].EntryType == domain.EntryWithdrawal &&
				entries[1].Amount.Equal(decimal.NewFromInt(-300)) &&
				entries[1].AdminOverride
		})).Return(&stored, nil).Once()

	_, err := refundSvc.RecordRepayment(context.Background(), dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(500),
		Method: "CASH",
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordRepayment_ClosedLoanRejected() {
	loan := suite.activeLoan()
	loan.Status = domain.LoanClosed
	suite.mockLoanRepo.On("FindLoanAccountByID", mock.Anything, loan.LoanID).Return(&loan, nil).Once()

	_, err := suite.service.RecordRepayment(context.Background(), dto.RepaymentRequest{
		LoanID: loan.LoanID,
		Amount: decimal.NewFromInt(100),
		Method: "CASH",
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrLoanNotRepayable)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
