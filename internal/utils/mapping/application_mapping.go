package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/models"
)

// ToModelLoanApplication converts a domain LoanApplication to a model
// LoanApplication, serialising guarantors to JSON.
func ToModelLoanApplication(d domain.LoanApplication) (models.LoanApplication, error) {
	guarantors, err := json.Marshal(d.Guarantors)
	if err != nil {
		return models.LoanApplication{}, fmt.Errorf("failed to marshal guarantors: %w", err)
	}
	m := models.LoanApplication{
		ApplicationID:   d.ApplicationID,
		MemberID:        d.MemberID,
		ProductID:       d.ProductID,
		RequestedAmount: d.RequestedAmount,
		TermMonths:      d.TermMonths,
		Purpose:         d.Purpose,
		Guarantors:      guarantors,
		RiskScore:       d.RiskScore,
		DebtToIncome:    d.DebtToIncome,
		Status:          string(d.Status),
		DecidedAt:       d.DecidedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.DecidedBy != "" {
		m.DecidedBy = &d.DecidedBy
	}
	if d.DecisionComment != "" {
		m.DecisionComment = &d.DecisionComment
	}
	return m, nil
}

// ToDomainLoanApplication converts a model LoanApplication to a domain
// LoanApplication.
func ToDomainLoanApplication(m models.LoanApplication) (domain.LoanApplication, error) {
	var guarantors []domain.Guarantor
	if len(m.Guarantors) > 0 {
		if err := json.Unmarshal(m.Guarantors, &guarantors); err != nil {
			return domain.LoanApplication{}, fmt.Errorf("failed to unmarshal guarantors for application %s: %w", m.ApplicationID, err)
		}
	}
	d := domain.LoanApplication{
		ApplicationID:   m.ApplicationID,
		MemberID:        m.MemberID,
		ProductID:       m.ProductID,
		RequestedAmount: m.RequestedAmount,
		TermMonths:      m.TermMonths,
		Purpose:         m.Purpose,
		Guarantors:      guarantors,
		RiskScore:       m.RiskScore,
		DebtToIncome:    m.DebtToIncome,
		Status:          domain.ApplicationStatus(m.Status),
		DecidedAt:       m.DecidedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.DecidedBy != nil {
		d.DecidedBy = *m.DecidedBy
	}
	if m.DecisionComment != nil {
		d.DecisionComment = *m.DecisionComment
	}
	return d, nil
}

// ToModelWithdrawalRequest converts a domain WithdrawalRequest to a model
// WithdrawalRequest.
func ToModelWithdrawalRequest(d domain.WithdrawalRequest) models.WithdrawalRequest {
	m := models.WithdrawalRequest{
		RequestID:   d.RequestID,
		AccountID:   d.AccountID,
		Amount:      d.Amount,
		Reason:      d.Reason,
		Status:      string(d.Status),
		DecidedAt:   d.DecidedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.DecidedBy != "" {
		m.DecidedBy = &d.DecidedBy
	}
	if d.DecisionComment != "" {
		m.DecisionComment = &d.DecisionComment
	}
	return m
}

// ToDomainWithdrawalRequest converts a model WithdrawalRequest to a domain
// WithdrawalRequest.
func ToDomainWithdrawalRequest(m models.WithdrawalRequest) domain.WithdrawalRequest {
	d := domain.WithdrawalRequest{
		RequestID:   m.RequestID,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		Reason:      m.Reason,
		Status:      domain.WithdrawalStatus(m.Status),
		DecidedAt:   m.DecidedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.DecidedBy != nil {
		d.DecidedBy = *m.DecidedBy
	}
	if m.DecisionComment != nil {
		d.DecisionComment = *m.DecisionComment
	}
	return d
}

// ToDomainWithdrawalRequestSlice converts a slice of model WithdrawalRequests
// to domain WithdrawalRequests.
func ToDomainWithdrawalRequestSlice(ms []models.WithdrawalRequest) []domain.WithdrawalRequest {
	ds := make([]domain.WithdrawalRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWithdrawalRequest(m)
	}
	return ds
}
