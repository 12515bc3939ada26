package dto

import (
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest credits a savings account.
type DepositRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=CASH TRANSFER MOBILE CHEQUE"`
	Reference string          `json:"reference"`
}

// WithdrawRequest debits a savings account. Amounts above the policy
// threshold produce a pending WithdrawalRequest instead of an immediate
// entry. AdminOverride lets an admin bypass the product minimum-balance
// floor; the override is flagged on the resulting entry.
type WithdrawRequest struct {
	AccountID     string          `json:"accountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Reason        string          `json:"reason"`
	AdminOverride bool            `json:"adminOverride"`
}

// WithdrawOutcome is either an immediately committed ledger entry or the
// pending request awaiting teller sign-off, never both.
type WithdrawOutcome struct {
	Entry   *domain.LedgerEntry       `json:"entry,omitempty"`
	Request *domain.WithdrawalRequest `json:"request,omitempty"`
}

// RepaymentRequest records a payment against a loan.
type RepaymentRequest struct {
	LoanID    string          `json:"loanID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=CASH TRANSFER MOBILE CHEQUE"`
	Reference string          `json:"reference"`
}

// StatementParams narrows and paginates a statement read.
type StatementParams struct {
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}

// LedgerEntryResponse is the API representation of a ledger entry.
type LedgerEntryResponse struct {
	EntryID          string          `json:"entryID"`
	AccountID        string          `json:"accountID"`
	Sequence         int64           `json:"sequence"`
	EntryType        string          `json:"entryType"`
	Amount           decimal.Decimal `json:"amount"`
	EntryDate        time.Time       `json:"entryDate"`
	Reference        string          `json:"reference,omitempty"`
	ResultingBalance decimal.Decimal `json:"resultingBalance"`
	ActorID          string          `json:"actorID"`
	AdminOverride    bool            `json:"adminOverride,omitempty"`
}

// ToLedgerEntryResponse converts a domain LedgerEntry.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:          e.EntryID,
		AccountID:        e.AccountID,
		Sequence:         e.Sequence,
		EntryType:        string(e.EntryType),
		Amount:           e.Amount,
		EntryDate:        e.EntryDate,
		Reference:        e.Reference,
		ResultingBalance: e.ResultingBalance,
		ActorID:          e.CreatedBy,
		AdminOverride:    e.AdminOverride,
	}
}

// StatementResponse is a page of ledger entries, oldest first.
type StatementResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToStatementResponse converts a page of domain entries.
func ToStatementResponse(entries []domain.LedgerEntry, nextToken *string) StatementResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return StatementResponse{Entries: out, NextToken: nextToken}
}
