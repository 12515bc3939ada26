package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsAccount is a savings account row. Balance is the snapshot
// maintained by the ledger append; last_accrual_at is the interest scan's
// resume marker.
type SavingsAccount struct {
	AccountID     string          `db:"account_id"`
	MemberID      string          `db:"member_id"`
	ProductID     string          `db:"product_id"`
	Status        string          `db:"status"`
	Balance       decimal.Decimal `db:"balance"`
	LastAccrualAt *time.Time      `db:"last_accrual_at"` // Nullable: never accrued
	AuditFields
}

// LoanAccount is a disbursed loan row.
type LoanAccount struct {
	LoanID             string          `db:"loan_id"`
	MemberID           string          `db:"member_id"`
	ProductID          string          `db:"product_id"`
	ApplicationID      string          `db:"application_id"`
	Principal          decimal.Decimal `db:"principal"`
	OutstandingBalance decimal.Decimal `db:"outstanding_balance"`
	MonthlyPayment     decimal.Decimal `db:"monthly_payment"`
	TermMonths         int             `db:"term_months"`
	NextPaymentDue     time.Time       `db:"next_payment_due"`
	Status             string          `db:"status"`
	LastPenaltyDate    *time.Time      `db:"last_penalty_date"` // Nullable
	RestructuredFrom   *string         `db:"restructured_from"` // Nullable
	AuditFields
}
