package mapping

import (
	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/sacco-suite/coop_core_app/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:              d.MemberID,
		Name:                  d.Name,
		Email:                 d.Email,
		Phone:                 d.Phone,
		Status:                string(d.Status),
		Category:              string(d.Category),
		DeclaredMonthlyIncome: d.DeclaredMonthlyIncome,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:              m.MemberID,
		Name:                  m.Name,
		Email:                 m.Email,
		Phone:                 m.Phone,
		Status:                domain.MemberStatus(m.Status),
		Category:              domain.MemberCategory(m.Category),
		DeclaredMonthlyIncome: m.DeclaredMonthlyIncome,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMemberSlice converts a slice of model Members to domain Members
func ToDomainMemberSlice(ms []models.Member) []domain.Member {
	ds := make([]domain.Member, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMember(m)
	}
	return ds
}
