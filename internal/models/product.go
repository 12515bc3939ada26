package models

import "github.com/shopspring/decimal"

// SavingsProduct is a savings product row.
type SavingsProduct struct {
	ProductID      string          `db:"product_id"`
	Name           string          `db:"name"`
	AnnualRate     decimal.Decimal `db:"annual_rate"`
	MinimumBalance decimal.Decimal `db:"minimum_balance"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}

// LoanProduct is a loan product row.
type LoanProduct struct {
	ProductID     string          `db:"product_id"`
	Name          string          `db:"name"`
	AnnualRate    decimal.Decimal `db:"annual_rate"`
	PenaltyRate   decimal.Decimal `db:"penalty_rate"`
	MinAmount     decimal.Decimal `db:"min_amount"`
	MaxAmount     decimal.Decimal `db:"max_amount"`
	MinTermMonths int             `db:"min_term_months"`
	MaxTermMonths int             `db:"max_term_months"`
	MinGuarantors int             `db:"min_guarantors"`
	GraceDays     int             `db:"grace_days"`
	IsActive      bool            `db:"is_active"`
	AuditFields
}
