package models

import "github.com/shopspring/decimal"

// Member represents a cooperative member row.
type Member struct {
	MemberID              string          `db:"member_id"`
	Name                  string          `db:"name"`
	Email                 string          `db:"email"`
	Phone                 string          `db:"phone"`
	Status                string          `db:"status"`
	Category              string          `db:"category"`
	DeclaredMonthlyIncome decimal.Decimal `db:"declared_monthly_income"`
	AuditFields
}
