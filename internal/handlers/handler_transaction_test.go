package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/handlers"
	"github.com/sacco-suite/coop_core_app/internal/platform/config"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

func (m *MockTransactionService) Deposit(ctx context.Context, req dto.DepositRequest, actorID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockTransactionService) Withdraw(ctx context.Context, req dto.WithdrawRequest, actorID string) (*dto.WithdrawOutcome, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WithdrawOutcome), args.Error(1)
}

func (m *MockTransactionService) RecordRepayment(ctx context.Context, req dto.RepaymentRequest, actorID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

type TransactionHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockTransactionService *MockTransactionService
	jwtSecret              string
	actorID                string
}

func (suite *TransactionHandlerTestSuite) generateTestToken(actorID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "coop-test",
		Subject:   actorID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.actorID = uuid.NewString()
	suite.mockTransactionService = new(MockTransactionService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.Services{
		Transaction: suite.mockTransactionService,
	})
}

func (suite *TransactionHandlerTestSuite) postJSON(path string, body any, authorized bool) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.actorID))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransactionHandlerTestSuite) TestDeposit_Success() {
	accountID := uuid.NewString()
	stored := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		AccountID:        accountID,
		Sequence:         4,
		EntryType:        domain.EntryDeposit,
		Amount:           decimal.NewFromInt(1000),
		ResultingBalance: decimal.NewFromInt(15000),
	}
	suite.mockTransactionService.On("Deposit", mock.Anything, mock.MatchedBy(func(r dto.DepositRequest) bool {
		return r.AccountID == accountID && r.Amount.Equal(decimal.NewFromInt(1000)) && r.Method == "CASH"
	}), suite.actorID).Return(&stored, nil).Once()

	w := suite.postJSON("/api/v1/transactions/deposits", gin.H{
		"accountID": accountID,
		"amount":    "1000",
		"method":    "CASH",
	}, true)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.LedgerEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(stored.EntryID, resp.EntryID)
	suite.True(resp.ResultingBalance.Equal(decimal.NewFromInt(15000)))
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestDeposit_Unauthorized() {
	w := suite.postJSON("/api/v1/transactions/deposits", gin.H{
		"accountID": uuid.NewString(),
		"amount":    "1000",
		"method":    "CASH",
	}, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTransactionService.AssertNotCalled(suite.T(), "Deposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestDeposit_UnknownMethodRejected() {
	w := suite.postJSON("/api/v1/transactions/deposits", gin.H{
		"accountID": uuid.NewString(),
		"amount":    "1000",
		"method":    "BARTER",
	}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransactionService.AssertNotCalled(suite.T(), "Deposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestWithdraw_PendingApprovalReturns202() {
	accountID := uuid.NewString()
	outcome := &dto.WithdrawOutcome{
		Request: &domain.WithdrawalRequest{
			RequestID: uuid.NewString(),
			AccountID: accountID,
			Amount:    decimal.NewFromInt(12000),
			Status:    domain.WithdrawalPending,
		},
	}
	suite.mockTransactionService.On("Withdraw", mock.Anything, mock.Anything, suite.actorID).
		Return(outcome, nil).Once()

	w := suite.postJSON("/api/v1/transactions/withdrawals", gin.H{
		"accountID": accountID,
		"amount":    "12000",
	}, true)

	suite.Equal(http.StatusAccepted, w.Code)
	var resp dto.WithdrawalRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(outcome.Request.RequestID, resp.RequestID)
	suite.Equal(string(domain.WithdrawalPending), resp.Status)
}

func (suite *TransactionHandlerTestSuite) TestWithdraw_BelowMinimumReturns422() {
	suite.mockTransactionService.On("Withdraw", mock.Anything, mock.Anything, suite.actorID).
		Return(nil, apperrors.ErrBelowMinimumBalance).Once()

	w := suite.postJSON("/api/v1/transactions/withdrawals", gin.H{
		"accountID": uuid.NewString(),
		"amount":    "13950",
	}, true)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestRecordRepayment_Success() {
	loanID := uuid.NewString()
	stored := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		AccountID:        loanID,
		EntryType:        domain.EntryRepayment,
		Amount:           decimal.NewFromInt(-850),
		ResultingBalance: decimal.NewFromInt(14150),
	}
	suite.mockTransactionService.On("RecordRepayment", mock.Anything, mock.MatchedBy(func(r dto.RepaymentRequest) bool {
		return r.LoanID == loanID && r.Amount.Equal(decimal.NewFromInt(850))
	}), suite.actorID).Return(&stored, nil).Once()

	w := suite.postJSON("/api/v1/transactions/repayments", gin.H{
		"loanID": loanID,
		"amount": "850",
		"method": "TRANSFER",
	}, true)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.LedgerEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.ResultingBalance.Equal(decimal.NewFromInt(14150)))
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
