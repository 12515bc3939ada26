package mapping

import (
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/models"
)

// ToModelSavingsProduct converts a domain SavingsProduct to a model SavingsProduct
func ToModelSavingsProduct(d domain.SavingsProduct) models.SavingsProduct {
	return models.SavingsProduct{
		ProductID:      d.ProductID,
		Name:           d.Name,
		AnnualRate:     d.AnnualRate,
		MinimumBalance: d.MinimumBalance,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSavingsProduct converts a model SavingsProduct to a domain SavingsProduct
func ToDomainSavingsProduct(m models.SavingsProduct) domain.SavingsProduct {
	return domain.SavingsProduct{
		ProductID:      m.ProductID,
		Name:           m.Name,
		AnnualRate:     m.AnnualRate,
		MinimumBalance: m.MinimumBalance,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLoanProduct converts a domain LoanProduct to a model LoanProduct
func ToModelLoanProduct(d domain.LoanProduct) models.LoanProduct {
	return models.LoanProduct{
		ProductID:     d.ProductID,
		Name:          d.Name,
		AnnualRate:    d.AnnualRate,
		PenaltyRate:   d.PenaltyRate,
		MinAmount:     d.MinAmount,
		MaxAmount:     d.MaxAmount,
		MinTermMonths: d.MinTermMonths,
		MaxTermMonths: d.MaxTermMonths,
		MinGuarantors: d.MinGuarantors,
		GraceDays:     d.GraceDays,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoanProduct converts a model LoanProduct to a domain LoanProduct
func ToDomainLoanProduct(m models.LoanProduct) domain.LoanProduct {
	return domain.LoanProduct{
		ProductID:     m.ProductID,
		Name:          m.Name,
		AnnualRate:    m.AnnualRate,
		PenaltyRate:   m.PenaltyRate,
		MinAmount:     m.MinAmount,
		MaxAmount:     m.MaxAmount,
		MinTermMonths: m.MinTermMonths,
		MaxTermMonths: m.MaxTermMonths,
		MinGuarantors: m.MinGuarantors,
		GraceDays:     m.GraceDays,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
