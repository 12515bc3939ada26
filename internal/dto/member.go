package dto

import (
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateMemberRequest is the payload for registering a new member.
type CreateMemberRequest struct {
	Name                  string          `json:"name" binding:"required"`
	Email                 string          `json:"email" binding:"required,email"`
	Phone                 string          `json:"phone" binding:"required"`
	Category              string          `json:"category" binding:"omitempty,oneof=REGULAR PREMIUM CORPORATE"`
	DeclaredMonthlyIncome decimal.Decimal `json:"declaredMonthlyIncome"`
}

// UpdateMemberStatusRequest changes a member's status and/or category. Both
// are explicit admin actions and land in the audit trail.
type UpdateMemberStatusRequest struct {
	Status   *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE PENDING"`
	Category *string `json:"category" binding:"omitempty,oneof=REGULAR PREMIUM CORPORATE"`
}

// MemberResponse is the API representation of a member.
type MemberResponse struct {
	MemberID              string          `json:"memberID"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	Status                string          `json:"status"`
	Category              string          `json:"category"`
	DeclaredMonthlyIncome decimal.Decimal `json:"declaredMonthlyIncome"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// ToMemberResponse converts a domain Member to its API representation.
func ToMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		MemberID:              m.MemberID,
		Name:                  m.Name,
		Email:                 m.Email,
		Phone:                 m.Phone,
		Status:                string(m.Status),
		Category:              string(m.Category),
		DeclaredMonthlyIncome: m.DeclaredMonthlyIncome,
		CreatedAt:             m.CreatedAt,
	}
}
