package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimumPaymentLoan(start time.Time) *Loan {
	req := &LoanRequest{
		CustomerID:            1,
		ItemID:                1,
		Amount:                decimal.NewFromInt(500),
		InterestRate:          decimal.NewFromInt(10),
		StartDate:             start,
		PlanType:              PlanMinimumPayment,
		MinimumMonthlyPayment: decimal.NewFromInt(50),
	}
	return req.ToLoan()
}

func TestMinimumPaymentQualifies(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mp := minimumPaymentLoan(start).MinimumPayment

	assert.True(t, mp.Qualifies(decimal.NewFromInt(50)))
	assert.True(t, mp.Qualifies(decimal.NewFromInt(100)))
	assert.False(t, mp.Qualifies(decimal.RequireFromString("49.99")))
}

func TestMinimumPaymentEvaluate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// First minimum payment falls due 30 days after origination
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no change before the due date", func(t *testing.T) {
		mp := minimumPaymentLoan(start).MinimumPayment

		assert.False(t, mp.Evaluate(due))
		assert.Equal(t, 0, mp.ConsecutiveMissed)
		assert.Nil(t, mp.GracePeriodEndDate)
	})

	t.Run("missed payment opens the grace window and counts once", func(t *testing.T) {
		mp := minimumPaymentLoan(start).MinimumPayment
		now := due.AddDate(0, 0, 1)

		assert.True(t, mp.Evaluate(now))
		assert.Equal(t, 1, mp.ConsecutiveMissed)
		require.NotNil(t, mp.GracePeriodEndDate)
		assert.Equal(t, due.AddDate(0, 0, DefaultGracePeriodDays), *mp.GracePeriodEndDate)
		assert.False(t, mp.IsAtRisk)

		// Re-running the sweep with the same clock changes nothing
		assert.False(t, mp.Evaluate(now))
		assert.Equal(t, 1, mp.ConsecutiveMissed)

		// Nor does a later sweep inside the same cycle
		assert.False(t, mp.Evaluate(due.AddDate(0, 0, 3)))
		assert.Equal(t, 1, mp.ConsecutiveMissed)
	})

	t.Run("loan goes at risk after the grace window closes", func(t *testing.T) {
		mp := minimumPaymentLoan(start).MinimumPayment

		require.True(t, mp.Evaluate(due.AddDate(0, 0, 1)))
		assert.False(t, mp.IsAtRisk)

		assert.True(t, mp.Evaluate(due.AddDate(0, 0, DefaultGracePeriodDays+1)))
		assert.True(t, mp.IsAtRisk)

		// Idempotent once at risk
		assert.False(t, mp.Evaluate(due.AddDate(0, 0, DefaultGracePeriodDays+2)))
		assert.True(t, mp.IsAtRisk)
	})

	t.Run("qualifying payment resets the tracker", func(t *testing.T) {
		mp := minimumPaymentLoan(start).MinimumPayment

		require.True(t, mp.Evaluate(due.AddDate(0, 0, DefaultGracePeriodDays+1)))
		require.True(t, mp.IsAtRisk)

		paidAt := due.AddDate(0, 0, DefaultGracePeriodDays+2)
		mp.RegisterQualifyingPayment(paidAt)

		assert.Equal(t, 0, mp.ConsecutiveMissed)
		assert.False(t, mp.IsAtRisk)
		assert.Nil(t, mp.GracePeriodEndDate)
		require.NotNil(t, mp.LastPaymentDate)
		assert.Equal(t, paidAt, *mp.LastPaymentDate)
		assert.Equal(t, paidAt.AddDate(0, 0, MinimumPaymentIntervalDays), mp.NextPaymentDate)

		assert.False(t, mp.Evaluate(paidAt.AddDate(0, 0, 1)))
	})

	t.Run("a second missed cycle increments the counter again", func(t *testing.T) {
		mp := minimumPaymentLoan(start).MinimumPayment

		require.True(t, mp.Evaluate(due.AddDate(0, 0, 1)))
		require.Equal(t, 1, mp.ConsecutiveMissed)

		paidAt := due.AddDate(0, 0, 2)
		mp.RegisterQualifyingPayment(paidAt)
		nextDue := paidAt.AddDate(0, 0, MinimumPaymentIntervalDays)

		require.True(t, mp.Evaluate(nextDue.AddDate(0, 0, 1)))
		assert.Equal(t, 1, mp.ConsecutiveMissed)
	})
}

func TestMinimumPaymentIsPaymentOverdue(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mp := minimumPaymentLoan(start).MinimumPayment

	assert.False(t, mp.IsPaymentOverdue(mp.NextPaymentDate))
	assert.True(t, mp.IsPaymentOverdue(mp.NextPaymentDate.AddDate(0, 0, 1)))
}
