package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an immutable ledger row. (account_id, sequence) is unique;
// rows are only ever inserted.
type LedgerEntry struct {
	EntryID          string          `db:"entry_id"`
	AccountID        string          `db:"account_id"`
	AccountKind      string          `db:"account_kind"`
	Sequence         int64           `db:"sequence"`
	EntryType        string          `db:"entry_type"`
	Amount           decimal.Decimal `db:"amount"`
	EntryDate        time.Time       `db:"entry_date"`
	Reference        string          `db:"reference"`
	ResultingBalance decimal.Decimal `db:"resulting_balance"`
	AdminOverride    bool            `db:"admin_override"`
	AuditFields
}
