package dto

import (
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenSavingsAccountRequest opens a savings account for a member, optionally
// funding it with an initial deposit in the same transaction.
type OpenSavingsAccountRequest struct {
	MemberID       string          `json:"memberID" binding:"required"`
	ProductID      string          `json:"productID" binding:"required"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
}

// AccountSummaryResponse is the dashboard card view of any account: derived
// balance, status and the product terms that govern it.
type AccountSummaryResponse struct {
	AccountID      string          `json:"accountID"`
	AccountKind    string          `json:"accountKind"`
	MemberID       string          `json:"memberID"`
	Status         string          `json:"status"`
	Balance        decimal.Decimal `json:"balance"`
	ProductID      string          `json:"productID"`
	ProductName    string          `json:"productName"`
	AnnualRate     decimal.Decimal `json:"annualRate"`
	MinimumBalance decimal.Decimal `json:"minimumBalance,omitempty"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment,omitempty"`
	NextPaymentDue *time.Time      `json:"nextPaymentDue,omitempty"`
	DaysOverdue    int             `json:"daysOverdue,omitempty"`
}

// SavingsAccountResponse is the API representation of a savings account.
type SavingsAccountResponse struct {
	AccountID string          `json:"accountID"`
	MemberID  string          `json:"memberID"`
	ProductID string          `json:"productID"`
	Status    string          `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToSavingsAccountResponse converts a domain SavingsAccount.
func ToSavingsAccountResponse(a *domain.SavingsAccount) SavingsAccountResponse {
	return SavingsAccountResponse{
		AccountID: a.AccountID,
		MemberID:  a.MemberID,
		ProductID: a.ProductID,
		Status:    string(a.Status),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

// LoanAccountResponse is the API representation of a loan account.
type LoanAccountResponse struct {
	LoanID             string          `json:"loanID"`
	MemberID           string          `json:"memberID"`
	ProductID          string          `json:"productID"`
	Principal          decimal.Decimal `json:"principal"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	MonthlyPayment     decimal.Decimal `json:"monthlyPayment"`
	TermMonths         int             `json:"termMonths"`
	NextPaymentDue     time.Time       `json:"nextPaymentDue"`
	Status             string          `json:"status"`
	DaysOverdue        int             `json:"daysOverdue"`
	RestructuredFrom   *string         `json:"restructuredFrom,omitempty"`
}

// ToLoanAccountResponse converts a domain LoanAccount, deriving days overdue
// at response time.
func ToLoanAccountResponse(l *domain.LoanAccount, now time.Time) LoanAccountResponse {
	return LoanAccountResponse{
		LoanID:             l.LoanID,
		MemberID:           l.MemberID,
		ProductID:          l.ProductID,
		Principal:          l.Principal,
		OutstandingBalance: l.OutstandingBalance,
		MonthlyPayment:     l.MonthlyPayment,
		TermMonths:         l.TermMonths,
		NextPaymentDue:     l.NextPaymentDue,
		Status:             string(l.Status),
		DaysOverdue:        l.DaysOverdue(now),
		RestructuredFrom:   l.RestructuredFrom,
	}
}
