package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanApplication is a loan application row. Guarantors are stored as a
// JSONB document; they are read back whole and never queried individually.
type LoanApplication struct {
	ApplicationID   string          `db:"application_id"`
	MemberID        string          `db:"member_id"`
	ProductID       string          `db:"product_id"`
	RequestedAmount decimal.Decimal `db:"requested_amount"`
	TermMonths      int             `db:"term_months"`
	Purpose         string          `db:"purpose"`
	Guarantors      []byte          `db:"guarantors"` // JSONB
	RiskScore       decimal.Decimal `db:"risk_score"`
	DebtToIncome    decimal.Decimal `db:"debt_to_income"`
	Status          string          `db:"status"`
	DecidedBy       *string         `db:"decided_by"`       // Nullable
	DecisionComment *string         `db:"decision_comment"` // Nullable
	DecidedAt       *time.Time      `db:"decided_at"`       // Nullable
	AuditFields
}

// WithdrawalRequest is a pending or decided withdrawal request row.
type WithdrawalRequest struct {
	RequestID       string          `db:"request_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"`
	Reason          string          `db:"reason"`
	Status          string          `db:"status"`
	DecidedBy       *string         `db:"decided_by"`       // Nullable
	DecisionComment *string         `db:"decision_comment"` // Nullable
	DecidedAt       *time.Time      `db:"decided_at"`       // Nullable
	AuditFields
}
