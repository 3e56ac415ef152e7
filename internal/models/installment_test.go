package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installmentLoan(amount string, rate string, count, frequencyDays int, start time.Time) *Loan {
	req := &LoanRequest{
		CustomerID:       1,
		ItemID:           1,
		Amount:           decimal.RequireFromString(amount),
		InterestRate:     decimal.RequireFromString(rate),
		StartDate:        start,
		PlanType:         PlanInstallments,
		InstallmentCount: count,
		FrequencyDays:    frequencyDays,
	}
	return req.ToLoan()
}

func TestGenerateInstallmentSchedule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("splits total evenly with last installment absorbing the remainder", func(t *testing.T) {
		loan := installmentLoan("500", "10", 3, 30, start)

		schedule, err := GenerateInstallmentSchedule(loan)
		require.NoError(t, err)
		require.Len(t, schedule, 3)

		assert.Equal(t, "183.33", schedule[0].Amount.StringFixed(2))
		assert.Equal(t, "183.33", schedule[1].Amount.StringFixed(2))
		assert.Equal(t, "183.34", schedule[2].Amount.StringFixed(2))

		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)

		for i, inst := range schedule {
			assert.Equal(t, i+1, inst.Number)
			assert.Equal(t, InstallmentStatusPending, inst.Status)
			assert.True(t, inst.PaidAmount.IsZero())
			assert.True(t, inst.BalanceRemaining.Equal(inst.Amount))
		}
	})

	t.Run("amounts sum exactly to principal plus interest", func(t *testing.T) {
		cases := []struct {
			amount string
			rate   string
			count  int
		}{
			{"500", "10", 3},
			{"1000", "7.5", 7},
			{"333.33", "12", 5},
			{"100", "0", 4},
		}

		for _, tc := range cases {
			loan := installmentLoan(tc.amount, tc.rate, tc.count, 14, start)

			schedule, err := GenerateInstallmentSchedule(loan)
			require.NoError(t, err)

			sumAmount := decimal.Zero
			sumPrincipal := decimal.Zero
			sumInterest := decimal.Zero
			for _, inst := range schedule {
				sumAmount = sumAmount.Add(inst.Amount)
				sumPrincipal = sumPrincipal.Add(inst.PrincipalAmount)
				sumInterest = sumInterest.Add(inst.InterestAmount)
				assert.True(t, inst.Amount.Equal(inst.PrincipalAmount.Add(inst.InterestAmount)))
			}

			assert.True(t, sumAmount.Equal(loan.TotalAmount), "amounts must sum to the loan total")
			assert.True(t, sumPrincipal.Equal(loan.Amount), "principal portions must sum to the principal")
			assert.True(t, sumInterest.Equal(loan.InterestAmount), "interest portions must sum to the interest")
		}
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		loan := installmentLoan("500", "10", 3, 30, start)
		loan.Installments.Count = 0
		_, err := GenerateInstallmentSchedule(loan)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)

		loan = installmentLoan("500", "10", 3, 30, start)
		loan.Installments.FrequencyDays = 0
		_, err = GenerateInstallmentSchedule(loan)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)

		loan = installmentLoan("500", "10", 3, 30, start)
		loan.Amount = decimal.Zero
		_, err = GenerateInstallmentSchedule(loan)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)

		loan = installmentLoan("500", "10", 3, 30, start)
		loan.InterestRate = decimal.NewFromInt(-1)
		_, err = GenerateInstallmentSchedule(loan)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)

		loan = installmentLoan("500", "10", 3, 30, start)
		loan.Installments = nil
		_, err = GenerateInstallmentSchedule(loan)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)
	})
}

func TestInstallmentRegisterPayment(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lateFee := decimal.NewFromInt(5)

	newSchedule := func(t *testing.T) []*Installment {
		loan := installmentLoan("500", "10", 3, 30, start)
		schedule, err := GenerateInstallmentSchedule(loan)
		require.NoError(t, err)
		return schedule
	}

	t.Run("full payment marks the installment paid", func(t *testing.T) {
		schedule := newSchedule(t)
		now := start.AddDate(0, 0, 10)

		schedule[0].RegisterPayment(decimal.RequireFromString("183.33"), now, lateFee)

		assert.Equal(t, InstallmentStatusPaid, schedule[0].Status)
		assert.True(t, schedule[0].BalanceRemaining.IsZero())
		require.NotNil(t, schedule[0].PaidDate)
		assert.Equal(t, now, *schedule[0].PaidDate)
	})

	t.Run("partial payment marks the installment partially paid", func(t *testing.T) {
		schedule := newSchedule(t)
		now := start.AddDate(0, 0, 10)

		schedule[0].RegisterPayment(decimal.NewFromInt(100), now, lateFee)

		assert.Equal(t, InstallmentStatusPartiallyPaid, schedule[0].Status)
		assert.Equal(t, "83.33", schedule[0].BalanceRemaining.StringFixed(2))
		assert.Nil(t, schedule[0].PaidDate)
	})

	t.Run("overpayment stays on the targeted installment", func(t *testing.T) {
		schedule := newSchedule(t)
		now := start.AddDate(0, 0, 10)

		schedule[0].RegisterPayment(decimal.NewFromInt(200), now, lateFee)

		assert.Equal(t, InstallmentStatusPaid, schedule[0].Status)
		assert.True(t, schedule[0].BalanceRemaining.IsZero())
		assert.Equal(t, InstallmentStatusPending, schedule[1].Status)
		assert.True(t, schedule[1].PaidAmount.IsZero())
	})
}

func TestInstallmentUpdateStatus(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lateFee := decimal.NewFromInt(5)

	loan := installmentLoan("500", "10", 3, 30, start)

	t.Run("pending installment past due becomes overdue with late fee", func(t *testing.T) {
		schedule, err := GenerateInstallmentSchedule(loan)
		require.NoError(t, err)

		now := schedule[0].DueDate.AddDate(0, 0, 3)
		schedule[0].UpdateStatus(now, lateFee)

		assert.Equal(t, InstallmentStatusOverdue, schedule[0].Status)
		assert.Equal(t, 3, schedule[0].DaysOverdue)
		// 5% of the remaining 183.33
		assert.Equal(t, "9.17", schedule[0].LateFee.StringFixed(2))
	})

	t.Run("partially paid installment past due stays partially paid", func(t *testing.T) {
		schedule, err := GenerateInstallmentSchedule(loan)
		require.NoError(t, err)

		schedule[0].RegisterPayment(decimal.NewFromInt(100), start.AddDate(0, 0, 10), lateFee)

		now := schedule[0].DueDate.AddDate(0, 0, 2)
		schedule[0].UpdateStatus(now, lateFee)

		assert.Equal(t, InstallmentStatusPartiallyPaid, schedule[0].Status)
		assert.Equal(t, 2, schedule[0].DaysOverdue)
		assert.Equal(t, "4.17", schedule[0].LateFee.StringFixed(2))
	})

	t.Run("paid installment never regresses", func(t *testing.T) {
		schedule, err := GenerateInstallmentSchedule(loan)
		require.NoError(t, err)

		schedule[0].RegisterPayment(decimal.RequireFromString("183.33"), start.AddDate(0, 0, 10), lateFee)
		require.Equal(t, InstallmentStatusPaid, schedule[0].Status)

		schedule[0].UpdateStatus(schedule[0].DueDate.AddDate(0, 0, 30), lateFee)

		assert.Equal(t, InstallmentStatusPaid, schedule[0].Status)
		assert.Equal(t, 0, schedule[0].DaysOverdue)
		assert.True(t, schedule[0].LateFee.IsZero())
	})
}

func TestEarliestUnpaid(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := installmentLoan("500", "10", 3, 30, start)

	schedule, err := GenerateInstallmentSchedule(loan)
	require.NoError(t, err)

	assert.Equal(t, 1, EarliestUnpaid(schedule).Number)

	schedule[0].RegisterPayment(schedule[0].Amount, start, decimal.NewFromInt(5))
	assert.Equal(t, 2, EarliestUnpaid(schedule).Number)

	schedule[1].RegisterPayment(schedule[1].Amount, start, decimal.NewFromInt(5))
	schedule[2].RegisterPayment(schedule[2].Amount, start, decimal.NewFromInt(5))
	assert.Nil(t, EarliestUnpaid(schedule))
}

func TestAnyOverdue(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := installmentLoan("500", "10", 3, 30, start)

	schedule, err := GenerateInstallmentSchedule(loan)
	require.NoError(t, err)

	assert.False(t, AnyOverdue(schedule))

	schedule[0].UpdateStatus(schedule[0].DueDate.AddDate(0, 0, 1), decimal.NewFromInt(5))
	assert.True(t, AnyOverdue(schedule))
}
