package dto

import (
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GuarantorRequest is one guarantor on a loan application.
type GuarantorRequest struct {
	Name          string          `json:"name" binding:"required"`
	Relationship  string          `json:"relationship" binding:"required"`
	Phone         string          `json:"phone" binding:"required"`
	Address       string          `json:"address"`
	Occupation    string          `json:"occupation"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
}

// SubmitApplicationRequest is the atomic submission of the UI's application
// wizard. Partial drafts never reach the server.
type SubmitApplicationRequest struct {
	MemberID   string             `json:"memberID" binding:"required"`
	ProductID  string             `json:"productID" binding:"required"`
	Amount     decimal.Decimal    `json:"amount" binding:"required"`
	TermMonths int                `json:"termMonths" binding:"required,min=1"`
	Purpose    string             `json:"purpose" binding:"required"`
	Guarantors []GuarantorRequest `json:"guarantors" binding:"dive"`
}

// DecideRequest is a reviewer verdict on an application or withdrawal
// request.
type DecideRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Comment  string `json:"comment"`
}

// ApplicationResponse is the API representation of a loan application,
// including the risk figures frozen at submission.
type ApplicationResponse struct {
	ApplicationID   string             `json:"applicationID"`
	MemberID        string             `json:"memberID"`
	ProductID       string             `json:"productID"`
	RequestedAmount decimal.Decimal    `json:"requestedAmount"`
	TermMonths      int                `json:"termMonths"`
	Purpose         string             `json:"purpose"`
	Guarantors      []domain.Guarantor `json:"guarantors"`
	RiskScore       decimal.Decimal    `json:"riskScore"`
	DebtToIncome    decimal.Decimal    `json:"debtToIncome"`
	Status          string             `json:"status"`
	DecidedBy       string             `json:"decidedBy,omitempty"`
	DecisionComment string             `json:"decisionComment,omitempty"`
	DecidedAt       *time.Time         `json:"decidedAt,omitempty"`
	SubmittedAt     time.Time          `json:"submittedAt"`
}

// ToApplicationResponse converts a domain LoanApplication.
func ToApplicationResponse(a *domain.LoanApplication) ApplicationResponse {
	return ApplicationResponse{
		ApplicationID:   a.ApplicationID,
		MemberID:        a.MemberID,
		ProductID:       a.ProductID,
		RequestedAmount: a.RequestedAmount,
		TermMonths:      a.TermMonths,
		Purpose:         a.Purpose,
		Guarantors:      a.Guarantors,
		RiskScore:       a.RiskScore,
		DebtToIncome:    a.DebtToIncome,
		Status:          string(a.Status),
		DecidedBy:       a.DecidedBy,
		DecisionComment: a.DecisionComment,
		DecidedAt:       a.DecidedAt,
		SubmittedAt:     a.CreatedAt,
	}
}

// WithdrawalRequestResponse is the API representation of a withdrawal
// request.
type WithdrawalRequestResponse struct {
	RequestID       string          `json:"requestID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason,omitempty"`
	Status          string          `json:"status"`
	DecidedBy       string          `json:"decidedBy,omitempty"`
	DecisionComment string          `json:"decisionComment,omitempty"`
	DecidedAt       *time.Time      `json:"decidedAt,omitempty"`
	RequestedAt     time.Time       `json:"requestedAt"`
}

// ToWithdrawalRequestResponse converts a domain WithdrawalRequest.
func ToWithdrawalRequestResponse(r *domain.WithdrawalRequest) WithdrawalRequestResponse {
	return WithdrawalRequestResponse{
		RequestID:       r.RequestID,
		AccountID:       r.AccountID,
		Amount:          r.Amount,
		Reason:          r.Reason,
		Status:          string(r.Status),
		DecidedBy:       r.DecidedBy,
		DecisionComment: r.DecisionComment,
		DecidedAt:       r.DecidedAt,
		RequestedAt:     r.CreatedAt,
	}
}

// AccrualScanResult summarises one interest & penalty scan.
type AccrualScanResult struct {
	InterestEntries int `json:"interestEntries"`
	PenaltyEntries  int `json:"penaltyEntries"`
	MarkedOverdue   int `json:"markedOverdue"`
	MarkedDefaulted int `json:"markedDefaulted"`
	AccountsScanned int `json:"accountsScanned"`
	LoansScanned    int `json:"loansScanned"`
}
