package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

// Decidable reports whether a teller decision may still be committed.
func (s WithdrawalStatus) Decidable() bool {
	return s == WithdrawalPending
}

// WithdrawalRequest exists because withdrawals above the policy threshold
// require teller sign-off before the transaction processor applies them.
// Below-threshold withdrawals never create a request.
type WithdrawalRequest struct {
	RequestID       string           `json:"requestID"`
	AccountID       string           `json:"accountID"`
	Amount          decimal.Decimal  `json:"amount"`
	Reason          string           `json:"reason"`
	Status          WithdrawalStatus `json:"status"`
	DecidedBy       string           `json:"decidedBy,omitempty"`
	DecisionComment string           `json:"decisionComment,omitempty"`
	DecidedAt       *time.Time       `json:"decidedAt,omitempty"`
	AuditFields
}
