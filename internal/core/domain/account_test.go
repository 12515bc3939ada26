package domain_test

import (
	"testing"
	"time"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoanStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.LoanStatus
		to   domain.LoanStatus
		want bool
	}{
		{"active to overdue", domain.LoanActive, domain.LoanOverdue, true},
		{"active to closed", domain.LoanActive, domain.LoanClosed, true},
		{"active cannot default directly", domain.LoanActive, domain.LoanDefaulted, false},
		{"overdue back to active", domain.LoanOverdue, domain.LoanActive, true},
		{"overdue to defaulted", domain.LoanOverdue, domain.LoanDefaulted, true},
		{"overdue to closed", domain.LoanOverdue, domain.LoanClosed, true},
		{"defaulted to restructured", domain.LoanDefaulted, domain.LoanRestructured, true},
		{"defaulted cannot reactivate", domain.LoanDefaulted, domain.LoanActive, false},
		{"closed is terminal", domain.LoanClosed, domain.LoanActive, false},
		{"restructured is terminal", domain.LoanRestructured, domain.LoanActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLoanStatus_Terminal(t *testing.T) {
	assert.True(t, domain.LoanClosed.Terminal())
	assert.True(t, domain.LoanRestructured.Terminal())
	assert.False(t, domain.LoanActive.Terminal())
	assert.False(t, domain.LoanOverdue.Terminal())
	assert.False(t, domain.LoanDefaulted.Terminal())
}

func TestLoanAccount_DaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	loan := domain.LoanAccount{
		OutstandingBalance: decimal.NewFromInt(5000),
		NextPaymentDue:     now.AddDate(0, 0, -5),
	}

	assert.Equal(t, 5, loan.DaysOverdue(now))

	loan.NextPaymentDue = now.AddDate(0, 0, 3)
	assert.Equal(t, 0, loan.DaysOverdue(now))

	// A settled loan is never overdue, whatever the schedule says.
	loan.NextPaymentDue = now.AddDate(0, 0, -30)
	loan.OutstandingBalance = decimal.Zero
	assert.Equal(t, 0, loan.DaysOverdue(now))
}

func TestApplicationStatus_Decidable(t *testing.T) {
	assert.True(t, domain.ApplicationPending.Decidable())
	assert.True(t, domain.ApplicationUnderReview.Decidable())
	assert.False(t, domain.ApplicationApproved.Decidable())
	assert.False(t, domain.ApplicationRejected.Decidable())
}
