package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/core/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/platform/events"
)

// stubScorer returns fixed figures so tests can assert they are frozen onto
// the application untouched.
type stubScorer struct {
	score decimal.Decimal
	dti   decimal.Decimal
}

func (s stubScorer) Score(services.ScoringInput) (decimal.Decimal, decimal.Decimal) {
	return s.score, s.dti
}

type LoanServiceTestSuite struct {
	suite.Suite
	mockMemberRepo      *MockMemberRepository
	mockProductRepo     *MockProductRepository
	mockLoanRepo        *MockLoanRepository
	mockApplicationRepo *MockApplicationRepository
	service             portssvc.LoanSvcFacade

	member  domain.Member
	product domain.LoanProduct
	actorID string
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.mockProductRepo = new(MockProductRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockApplicationRepo = new(MockApplicationRepository)

	suite.service = services.NewLoanService(
		testRepositories(suite.mockMemberRepo, suite.mockProductRepo, new(MockSavingsRepository),
			suite.mockLoanRepo, new(MockLedgerRepository), suite.mockApplicationRepo, new(MockWithdrawalRepository)),
		stubScorer{score: decimal.NewFromFloat(42.5), dti: decimal.NewFromFloat(18.75)},
		events.NewPublisher(nil),
	)

	suite.actorID = uuid.NewString()
	suite.member = domain.Member{
		MemberID:              uuid.NewString(),
		Name:                  "Joseph Mwangi",
		Status:                domain.MemberActive,
		DeclaredMonthlyIncome: decimal.NewFromInt(4000),
	}
	suite.product = domain.LoanProduct{
		ProductID:     uuid.NewString(),
		Name:          "Development Loan",
		AnnualRate:    decimal.NewFromFloat(0.12),
		PenaltyRate:   decimal.NewFromFloat(0.05),
		MinAmount:     decimal.NewFromInt(1000),
		MaxAmount:     decimal.NewFromInt(50000),
		MinTermMonths: 6,
		MaxTermMonths: 48,
		MinGuarantors: 1,
		GraceDays:     90,
		IsActive:      true,
	}
}

func guarantors(n int) []dto.GuarantorRequest {
	out := make([]dto.GuarantorRequest, n)
	for i := range out {
		out[i] = dto.GuarantorRequest{
			Name:         "Guarantor " + string(rune('A'+i)),
			Relationship: "colleague",
			Phone:        "0700000000",
		}
	}
	return out
}

func (suite *LoanServiceTestSuite) submitReq() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		MemberID:   suite.member.MemberID,
		ProductID:  suite.product.ProductID,
		Amount:     decimal.NewFromInt(20000),
		TermMonths: 24,
		Purpose:    "shop expansion",
		Guarantors: guarantors(2),
	}
}

func (suite *LoanServiceTestSuite) TestSubmitApplication_FreezesRiskFigures() {
	ctx := context.Background()
	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.member.MemberID).Return(&suite.member, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()
	suite.mockLoanRepo.On("FindLoanAccountsByMemberID", ctx, suite.member.MemberID).Return([]domain.LoanAccount{}, nil).Once()
	suite.mockApplicationRepo.On("SaveApplication", ctx, mock.MatchedBy(func(a domain.LoanApplication) bool {
		return a.Status == domain.ApplicationPending &&
			a.RiskScore.Equal(decimal.NewFromFloat(42.5)) &&
			a.DebtToIncome.Equal(decimal.NewFromFloat(18.75))
	})).Return(nil).Once()

	application, err := suite.service.SubmitApplication(ctx, suite.submitReq(), suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApplicationPending, application.Status)
	suite.True(application.RiskScore.Equal(decimal.NewFromFloat(42.5)))
	suite.Len(application.Guarantors, 2)
	suite.mockApplicationRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestSubmitApplication_AmountOutsideBounds() {
	ctx := context.Background()
	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.member.MemberID).Return(&suite.member, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()

	req := suite.submitReq()
	req.Amount = decimal.NewFromInt(75000)

	_, err := suite.service.SubmitApplication(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidProduct)
	suite.mockApplicationRepo.AssertNotCalled(suite.T(), "SaveApplication", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestSubmitApplication_TooFewGuarantors() {
	ctx := context.Background()
	suite.product.MinGuarantors = 3
	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.member.MemberID).Return(&suite.member, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()

	_, err := suite.service.SubmitApplication(ctx, suite.submitReq(), suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTooFewGuarantors)
}

func (suite *LoanServiceTestSuite) TestSubmitApplication_InactiveMember() {
	ctx := context.Background()
	suite.member.Status = domain.MemberInactive
	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.member.MemberID).Return(&suite.member, nil).Once()

	_, err := suite.service.SubmitApplication(ctx, suite.submitReq(), suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMemberNotTransacting)
}

func (suite *LoanServiceTestSuite) approvedApplication() domain.LoanApplication {
	return domain.LoanApplication{
		ApplicationID:   uuid.NewString(),
		MemberID:        suite.member.MemberID,
		ProductID:       suite.product.ProductID,
		RequestedAmount: decimal.NewFromInt(20000),
		TermMonths:      24,
		Status:          domain.ApplicationApproved,
	}
}

func (suite *LoanServiceTestSuite) TestDisburse_CreatesLoanWithAnnuityPayment() {
	ctx := context.Background()
	application := suite.approvedApplication()
	suite.mockApplicationRepo.On("FindApplicationByID", ctx, application.ApplicationID).Return(&application, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()

	// 20000 at 12% p.a. over 24 months: P*r*(1+r)^n / ((1+r)^n - 1).
	expectedPayment := decimal.NewFromFloat(941.47)
	suite.mockLoanRepo.On("SaveLoanAccount", ctx, mock.MatchedBy(func(l domain.LoanAccount) bool {
		return l.Status == domain.LoanActive &&
			l.Principal.Equal(decimal.NewFromInt(20000)) &&
			l.OutstandingBalance.Equal(decimal.NewFromInt(20000)) &&
			l.MonthlyPayment.Equal(expectedPayment) &&
			l.RestructuredFrom == nil
	}), mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryType == domain.EntryDisbursement &&
			e.Sequence == 1 &&
			e.Amount.Equal(decimal.NewFromInt(20000)) &&
			e.ResultingBalance.Equal(decimal.NewFromInt(20000))
	})).Return(nil).Once()

	loan, err := suite.service.Disburse(ctx, application.ApplicationID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.LoanActive, loan.Status)
	suite.True(loan.MonthlyPayment.Equal(expectedPayment))
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestDisburse_ZeroRateDividesEvenly() {
	ctx := context.Background()
	suite.product.AnnualRate = decimal.Zero
	application := suite.approvedApplication()
	suite.mockApplicationRepo.On("FindApplicationByID", ctx, application.ApplicationID).Return(&application, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()

	suite.mockLoanRepo.On("SaveLoanAccount", ctx, mock.MatchedBy(func(l domain.LoanAccount) bool {
		return l.MonthlyPayment.Equal(decimal.NewFromFloat(833.33))
	}), mock.Anything).Return(nil).Once()

	_, err := suite.service.Disburse(ctx, application.ApplicationID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestDisburse_NotApproved() {
	ctx := context.Background()
	application := suite.approvedApplication()
	application.Status = domain.ApplicationPending
	suite.mockApplicationRepo.On("FindApplicationByID", ctx, application.ApplicationID).Return(&application, nil).Once()

	_, err := suite.service.Disburse(ctx, application.ApplicationID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotApproved)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "SaveLoanAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestDisburse_SecondAttemptRejected() {
	ctx := context.Background()
	application := suite.approvedApplication()
	suite.mockApplicationRepo.On("FindApplicationByID", ctx, application.ApplicationID).Return(&application, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()
	suite.mockLoanRepo.On("SaveLoanAccount", ctx, mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.Disburse(ctx, application.ApplicationID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyDisbursed)
}

func (suite *LoanServiceTestSuite) TestRestructure_SpawnsNewLoanFromDefaulted() {
	ctx := context.Background()
	old := domain.LoanAccount{
		LoanID:             uuid.NewString(),
		MemberID:           suite.member.MemberID,
		ProductID:          suite.product.ProductID,
		ApplicationID:      uuid.NewString(),
		Principal:          decimal.NewFromInt(20000),
		OutstandingBalance: decimal.NewFromInt(8400),
		TermMonths:         24,
		Status:             domain.LoanDefaulted,
	}
	suite.mockLoanRepo.On("FindLoanAccountByID", ctx, old.LoanID).Return(&old, nil).Once()
	suite.mockProductRepo.On("FindLoanProductByID", ctx, suite.product.ProductID).Return(&suite.product, nil).Once()
	suite.mockLoanRepo.On("SaveLoanAccount", ctx, mock.MatchedBy(func(l domain.LoanAccount) bool {
		return l.Status == domain.LoanActive &&
			l.Principal.Equal(decimal.NewFromInt(8400)) &&
			l.RestructuredFrom != nil && *l.RestructuredFrom == old.LoanID
	}), mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryType == domain.EntryDisbursement && e.Amount.Equal(decimal.NewFromInt(8400))
	})).Return(nil).Once()

	loan, err := suite.service.Restructure(ctx, old.LoanID, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(loan.RestructuredFrom)
	suite.Equal(old.LoanID, *loan.RestructuredFrom)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestRestructure_ActiveLoanRejected() {
	ctx := context.Background()
	old := domain.LoanAccount{
		LoanID: uuid.NewString(),
		Status: domain.LoanActive,
	}
	suite.mockLoanRepo.On("FindLoanAccountByID", ctx, old.LoanID).Return(&old, nil).Once()

	_, err := suite.service.Restructure(ctx, old.LoanID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotDefaulted)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "SaveLoanAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestBeginReview_DelegatesConditionalUpdate() {
	ctx := context.Background()
	applicationID := uuid.NewString()
	underReview := domain.LoanApplication{ApplicationID: applicationID, Status: domain.ApplicationUnderReview}
	suite.mockApplicationRepo.On("MarkUnderReview", ctx, applicationID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(&underReview, nil).Once()

	application, err := suite.service.BeginReview(ctx, applicationID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApplicationUnderReview, application.Status)
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
