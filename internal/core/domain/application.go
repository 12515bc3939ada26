package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle state of a loan application. The UI's
// draft wizard is client-side only; an application exists here from
// submission onward and terminates at approved or rejected.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "PENDING"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationApproved    ApplicationStatus = "APPROVED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

// Decidable reports whether a reviewer decision may still be committed.
func (s ApplicationStatus) Decidable() bool {
	return s == ApplicationPending || s == ApplicationUnderReview
}

// Guarantor is a third party backing a loan application. Guarantors are
// recorded for risk assessment only and are not system actors.
type Guarantor struct {
	Name          string          `json:"name"`
	Relationship  string          `json:"relationship"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Occupation    string          `json:"occupation"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
}

// LoanApplication is a member's request for a loan. RiskScore and
// DebtToIncome are computed once at submission and frozen, so a later
// reviewer always sees the figures the applicant was scored against.
type LoanApplication struct {
	ApplicationID   string            `json:"applicationID"`
	MemberID        string            `json:"memberID"`
	ProductID       string            `json:"productID"`
	RequestedAmount decimal.Decimal   `json:"requestedAmount"`
	TermMonths      int               `json:"termMonths"`
	Purpose         string            `json:"purpose"`
	Guarantors      []Guarantor       `json:"guarantors"`
	RiskScore       decimal.Decimal   `json:"riskScore"`
	DebtToIncome    decimal.Decimal   `json:"debtToIncome"`
	Status          ApplicationStatus `json:"status"`
	DecidedBy       string            `json:"decidedBy,omitempty"`
	DecisionComment string            `json:"decisionComment,omitempty"`
	DecidedAt       *time.Time        `json:"decidedAt,omitempty"`
	AuditFields
}
