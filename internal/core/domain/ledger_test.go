package domain_test

import (
	"testing"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEntrySign(t *testing.T) {
	tests := []struct {
		name string
		kind domain.AccountKind
		typ  domain.EntryType
		want int
	}{
		{"deposit credits savings", domain.KindSavings, domain.EntryDeposit, 1},
		{"interest credits savings", domain.KindSavings, domain.EntryInterestAccrual, 1},
		{"overflow credits savings", domain.KindSavings, domain.EntryCreditOverflow, 1},
		{"withdrawal debits savings", domain.KindSavings, domain.EntryWithdrawal, -1},
		{"disbursement raises loan balance", domain.KindLoan, domain.EntryDisbursement, 1},
		{"interest raises loan balance", domain.KindLoan, domain.EntryInterestAccrual, 1},
		{"penalty raises loan balance", domain.KindLoan, domain.EntryPenaltyAccrual, 1},
		{"repayment lowers loan balance", domain.KindLoan, domain.EntryRepayment, -1},
		{"disbursement not permitted on savings", domain.KindSavings, domain.EntryDisbursement, 0},
		{"deposit not permitted on loan", domain.KindLoan, domain.EntryDeposit, 0},
		{"withdrawal not permitted on loan", domain.KindLoan, domain.EntryWithdrawal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.EntrySign(tt.kind, tt.typ))
		})
	}
}

func TestReplayBalance(t *testing.T) {
	entries := []domain.LedgerEntry{
		{Sequence: 1, Amount: decimal.NewFromInt(14000)},
		{Sequence: 2, Amount: decimal.NewFromInt(1000)},
		{Sequence: 3, Amount: decimal.NewFromInt(-850)},
	}

	assert.True(t, domain.ReplayBalance(entries).Equal(decimal.NewFromInt(14150)))
	assert.True(t, domain.ReplayBalance(nil).IsZero())
}
