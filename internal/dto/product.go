package dto

import "github.com/shopspring/decimal"

// CreateSavingsProductRequest defines a new savings product.
type CreateSavingsProductRequest struct {
	Name           string          `json:"name" binding:"required"`
	AnnualRate     decimal.Decimal `json:"annualRate" binding:"required"`
	MinimumBalance decimal.Decimal `json:"minimumBalance"`
}

// CreateLoanProductRequest defines a new loan product.
type CreateLoanProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	AnnualRate    decimal.Decimal `json:"annualRate" binding:"required"`
	PenaltyRate   decimal.Decimal `json:"penaltyRate"`
	MinAmount     decimal.Decimal `json:"minAmount" binding:"required"`
	MaxAmount     decimal.Decimal `json:"maxAmount" binding:"required"`
	MinTermMonths int             `json:"minTermMonths" binding:"required,min=1"`
	MaxTermMonths int             `json:"maxTermMonths" binding:"required,min=1"`
	MinGuarantors int             `json:"minGuarantors"`
	GraceDays     int             `json:"graceDays"`
}
