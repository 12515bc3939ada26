package events

import "time"

// Event types
const (
	LoanApproved      = "loan.approved"
	LoanRejected      = "loan.rejected"
	LoanDisbursed     = "loan.disbursed"
	LoanClosed        = "loan.closed"
	LoanDefaulted     = "loan.defaulted"
	PaymentOverdue    = "payment.overdue"
	WithdrawalDecided = "withdrawal.decided"
	DepositRecorded   = "deposit.recorded"
	RepaymentRecorded = "repayment.recorded"
)

// Stream names
const (
	LoanEventsStream        = "loan.events"
	TransactionEventsStream = "transaction.events"
	ApprovalEventsStream    = "approval.events"
)

// Event is the envelope published to a stream. Payloads are consumed by the
// external notification service; the core never reads them back.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// LoanDecisionEvent announces an application decision.
type LoanDecisionEvent struct {
	ApplicationID string `json:"applicationId"`
	MemberID      string `json:"memberId"`
	Decision      string `json:"decision"`
	ActorID       string `json:"actorId"`
}

// PaymentOverdueEvent announces a loan crossing into overdue.
type PaymentOverdueEvent struct {
	LoanID      string `json:"loanId"`
	MemberID    string `json:"memberId"`
	DaysOverdue int    `json:"daysOverdue"`
}

// WithdrawalDecidedEvent announces a teller decision on a withdrawal
// request.
type WithdrawalDecidedEvent struct {
	RequestID string `json:"requestId"`
	AccountID string `json:"accountId"`
	Decision  string `json:"decision"`
	ActorID   string `json:"actorId"`
}
