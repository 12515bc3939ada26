package domain

import "github.com/shopspring/decimal"

// SavingsProduct defines the terms of a savings account: the annual interest
// rate applied by the accrual scan and the minimum balance the account must
// keep after any withdrawal.
type SavingsProduct struct {
	ProductID      string          `json:"productID"`
	Name           string          `json:"name"`
	AnnualRate     decimal.Decimal `json:"annualRate"`     // e.g. 0.04 for 4% p.a.
	MinimumBalance decimal.Decimal `json:"minimumBalance"` // floor after withdrawals
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// LoanProduct defines the terms of a loan: rate, principal bounds, term
// bounds, the per-day penalty rate applied to the monthly payment while
// overdue, and the minimum number of guarantors an application must carry.
type LoanProduct struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	AnnualRate    decimal.Decimal `json:"annualRate"`
	PenaltyRate   decimal.Decimal `json:"penaltyRate"` // fraction of monthly payment per overdue day
	MinAmount     decimal.Decimal `json:"minAmount"`
	MaxAmount     decimal.Decimal `json:"maxAmount"`
	MinTermMonths int             `json:"minTermMonths"`
	MaxTermMonths int             `json:"maxTermMonths"`
	MinGuarantors int             `json:"minGuarantors"`
	GraceDays     int             `json:"graceDays"` // overdue days before default
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// AllowsAmount reports whether the requested principal lies within the
// product's min/max bounds.
func (p *LoanProduct) AllowsAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

// AllowsTerm reports whether the requested term lies within the product's
// term bounds.
func (p *LoanProduct) AllowsTerm(termMonths int) bool {
	return termMonths >= p.MinTermMonths && termMonths <= p.MaxTermMonths
}
