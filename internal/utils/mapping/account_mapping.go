package mapping

import (
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/models"
)

// ToModelSavingsAccount converts a domain SavingsAccount to a model SavingsAccount
func ToModelSavingsAccount(d domain.SavingsAccount) models.SavingsAccount {
	m := models.SavingsAccount{
		AccountID:   d.AccountID,
		MemberID:    d.MemberID,
		ProductID:   d.ProductID,
		Status:      string(d.Status),
		Balance:     d.Balance,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if !d.LastAccrualAt.IsZero() {
		t := d.LastAccrualAt
		m.LastAccrualAt = &t
	}
	return m
}

// ToDomainSavingsAccount converts a model SavingsAccount to a domain SavingsAccount
func ToDomainSavingsAccount(m models.SavingsAccount) domain.SavingsAccount {
	d := domain.SavingsAccount{
		AccountID:   m.AccountID,
		MemberID:    m.MemberID,
		ProductID:   m.ProductID,
		Status:      domain.SavingsStatus(m.Status),
		Balance:     m.Balance,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.LastAccrualAt != nil {
		d.LastAccrualAt = *m.LastAccrualAt
	} else {
		d.LastAccrualAt = time.Time{}
	}
	return d
}

// ToDomainSavingsAccountSlice converts a slice of model SavingsAccounts to domain SavingsAccounts
func ToDomainSavingsAccountSlice(ms []models.SavingsAccount) []domain.SavingsAccount {
	ds := make([]domain.SavingsAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSavingsAccount(m)
	}
	return ds
}

// ToModelLoanAccount converts a domain LoanAccount to a model LoanAccount
func ToModelLoanAccount(d domain.LoanAccount) models.LoanAccount {
	return models.LoanAccount{
		LoanID:             d.LoanID,
		MemberID:           d.MemberID,
		ProductID:          d.ProductID,
		ApplicationID:      d.ApplicationID,
		Principal:          d.Principal,
		OutstandingBalance: d.OutstandingBalance,
		MonthlyPayment:     d.MonthlyPayment,
		TermMonths:         d.TermMonths,
		NextPaymentDue:     d.NextPaymentDue,
		Status:             string(d.Status),
		LastPenaltyDate:    d.LastPenaltyDate,
		RestructuredFrom:   d.RestructuredFrom,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoanAccount converts a model LoanAccount to a domain LoanAccount
func ToDomainLoanAccount(m models.LoanAccount) domain.LoanAccount {
	return domain.LoanAccount{
		LoanID:             m.LoanID,
		MemberID:           m.MemberID,
		ProductID:          m.ProductID,
		ApplicationID:      m.ApplicationID,
		Principal:          m.Principal,
		OutstandingBalance: m.OutstandingBalance,
		MonthlyPayment:     m.MonthlyPayment,
		TermMonths:         m.TermMonths,
		NextPaymentDue:     m.NextPaymentDue,
		Status:             domain.LoanStatus(m.Status),
		LastPenaltyDate:    m.LastPenaltyDate,
		RestructuredFrom:   m.RestructuredFrom,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanAccountSlice converts a slice of model LoanAccounts to domain LoanAccounts
func ToDomainLoanAccountSlice(ms []models.LoanAccount) []domain.LoanAccount {
	ds := make([]domain.LoanAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoanAccount(m)
	}
	return ds
}
