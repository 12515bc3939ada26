package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes the two ledgers an entry can belong to. The sign
// convention is fixed per kind: positive increases "funds held" for savings
// and "funds owed to the institution" for loans.
type AccountKind string

const (
	KindSavings AccountKind = "SAVINGS"
	KindLoan    AccountKind = "LOAN"
)

// EntryType classifies a balance-affecting event.
type EntryType string

const (
	EntryDeposit         EntryType = "DEPOSIT"
	EntryWithdrawal      EntryType = "WITHDRAWAL"
	EntryDisbursement    EntryType = "DISBURSEMENT"
	EntryRepayment       EntryType = "REPAYMENT"
	EntryInterestAccrual EntryType = "INTEREST_ACCRUAL"
	EntryPenaltyAccrual  EntryType = "PENALTY_ACCRUAL"
	EntryCreditOverflow  EntryType = "CREDIT_OVERFLOW"
)

// EntrySign returns the fixed sign (+1 or -1) an entry type carries on the
// given account kind, or 0 when the combination is not permitted.
func EntrySign(kind AccountKind, t EntryType) int {
	switch kind {
	case KindSavings:
		switch t {
		case EntryDeposit, EntryInterestAccrual, EntryCreditOverflow:
			return 1
		case EntryWithdrawal:
			return -1
		}
	case KindLoan:
		switch t {
		case EntryDisbursement, EntryInterestAccrual, EntryPenaltyAccrual:
			return 1
		case EntryRepayment:
			return -1
		}
	}
	return 0
}

// LedgerEntry is the immutable record of a single balance-affecting event.
// Entries are never mutated or deleted; corrections are new compensating
// entries. Sequence is monotonic per account, so folding entries in sequence
// order deterministically reproduces every ResultingBalance snapshot.
type LedgerEntry struct {
	EntryID     string      `json:"entryID"`
	AccountID   string      `json:"accountID"`
	AccountKind AccountKind `json:"accountKind"`
	Sequence    int64       `json:"sequence"`
	EntryType   EntryType   `json:"entryType"`
	// Amount is signed according to EntrySign for the account kind.
	Amount    decimal.Decimal `json:"amount"`
	EntryDate time.Time       `json:"entryDate"`
	Reference string          `json:"reference"`
	// ResultingBalance is the account balance immediately after this entry,
	// kept for fast reads and audit.
	ResultingBalance decimal.Decimal `json:"resultingBalance"`
	// AdminOverride marks entries that were allowed to bypass the product
	// minimum-balance floor.
	AdminOverride bool `json:"adminOverride"`
	AuditFields
}

// ReplayBalance folds entries in sequence order and returns the final
// balance. It is the reference computation every stored snapshot must match.
func ReplayBalance(entries []LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Amount)
	}
	return balance
}
