package domain

import "github.com/shopspring/decimal"

// MemberStatus indicates whether a member may transact.
type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
	MemberPending  MemberStatus = "PENDING"
)

// MemberCategory groups members for product eligibility and reporting.
type MemberCategory string

const (
	CategoryRegular   MemberCategory = "REGULAR"
	CategoryPremium   MemberCategory = "PREMIUM"
	CategoryCorporate MemberCategory = "CORPORATE"
)

// Member represents a cooperative member. A member owns zero or more savings
// accounts and zero or more loan accounts. The ID is immutable; status and
// category change only via explicit admin action, which is audit-logged.
type Member struct {
	MemberID              string          `json:"memberID"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	Status                MemberStatus    `json:"status"`
	Category              MemberCategory  `json:"category"`
	DeclaredMonthlyIncome decimal.Decimal `json:"declaredMonthlyIncome"`
	AuditFields
}

// CanTransact reports whether new balance-affecting operations are allowed
// for this member. Deactivation blocks new transactions but never deletes
// history.
func (m *Member) CanTransact() bool {
	return m.Status == MemberActive
}
