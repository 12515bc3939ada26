package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsStatus is the lifecycle state of a savings account.
type SavingsStatus string

const (
	SavingsActive  SavingsStatus = "ACTIVE"
	SavingsDormant SavingsStatus = "DORMANT"
	SavingsClosed  SavingsStatus = "CLOSED"
)

// SavingsAccount represents a member's savings account. Balance is derived:
// it always equals the running sum of the account's ledger entries, and the
// persisted value is a snapshot maintained under the same lock as the append.
type SavingsAccount struct {
	AccountID string          `json:"accountID"`
	MemberID  string          `json:"memberID"`
	ProductID string          `json:"productID"`
	Status    SavingsStatus   `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
	// LastAccrualAt is the resume point for the interest scan. Zero value
	// means the account has never accrued.
	LastAccrualAt time.Time `json:"lastAccrualAt"`
	AuditFields
}

// LoanStatus is the lifecycle state of a disbursed loan account. Application
// states (pending, under review, approved, rejected) live on LoanApplication;
// a loan account exists only from disbursement onward.
type LoanStatus string

const (
	LoanActive       LoanStatus = "ACTIVE"
	LoanOverdue      LoanStatus = "OVERDUE"
	LoanClosed       LoanStatus = "CLOSED"
	LoanDefaulted    LoanStatus = "DEFAULTED"
	LoanRestructured LoanStatus = "RESTRUCTURED"
)

// loanTransitions encodes the permitted state machine edges.
// active -> overdue on an overdue scan, overdue -> active on catch-up
// payment, active/overdue -> closed at zero balance, overdue -> defaulted
// past the grace period, defaulted -> restructured spawns a new loan.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanActive:    {LoanOverdue, LoanClosed},
	LoanOverdue:   {LoanActive, LoanClosed, LoanDefaulted},
	LoanDefaulted: {LoanRestructured},
}

// CanTransitionTo reports whether the state machine permits moving from s to
// target. Closed and restructured are terminal.
func (s LoanStatus) CanTransitionTo(target LoanStatus) bool {
	for _, t := range loanTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s LoanStatus) Terminal() bool {
	return len(loanTransitions[s]) == 0
}

// LoanAccount represents a disbursed loan. OutstandingBalance is derived from
// the loan's ledger entries (disbursement and accruals increase it,
// repayments decrease it) and must never go below zero.
type LoanAccount struct {
	LoanID             string          `json:"loanID"`
	MemberID           string          `json:"memberID"`
	ProductID          string          `json:"productID"`
	ApplicationID      string          `json:"applicationID"`
	Principal          decimal.Decimal `json:"principal"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	MonthlyPayment     decimal.Decimal `json:"monthlyPayment"`
	TermMonths         int             `json:"termMonths"`
	NextPaymentDue     time.Time       `json:"nextPaymentDue"`
	Status             LoanStatus      `json:"status"`
	// LastPenaltyDate is the idempotence key for the penalty scan: at most
	// one penalty accrual per calendar day per unpaid period.
	LastPenaltyDate *time.Time `json:"lastPenaltyDate,omitempty"`
	// RestructuredFrom references the defaulted loan this one replaced.
	RestructuredFrom *string `json:"restructuredFrom,omitempty"`
	AuditFields
}

// DaysOverdue returns max(0, now - nextPaymentDue) in whole days while the
// loan still carries a balance.
func (l *LoanAccount) DaysOverdue(now time.Time) int {
	if l.OutstandingBalance.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	if !now.After(l.NextPaymentDue) {
		return 0
	}
	return int(now.Sub(l.NextPaymentDue).Hours() / 24)
}
