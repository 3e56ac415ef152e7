package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traditionalLoan(amount, rate string, termDays int, start time.Time) *Loan {
	req := &LoanRequest{
		CustomerID:   1,
		ItemID:       1,
		Amount:       decimal.RequireFromString(amount),
		InterestRate: decimal.RequireFromString(rate),
		StartDate:    start,
		PlanType:     PlanTraditional,
		TermDays:     termDays,
	}
	return req.ToLoan()
}

func TestLoanRequestValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := func() *LoanRequest {
		return &LoanRequest{
			CustomerID:   1,
			ItemID:       1,
			Amount:       decimal.NewFromInt(500),
			InterestRate: decimal.NewFromInt(10),
			StartDate:    start,
			PlanType:     PlanTraditional,
			TermDays:     30,
		}
	}

	t.Run("accepts a valid traditional request", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		req := valid()
		req.Amount = decimal.Zero
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})

	t.Run("rejects negative interest rate", func(t *testing.T) {
		req := valid()
		req.InterestRate = decimal.NewFromInt(-1)
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})

	t.Run("rejects traditional plan without term", func(t *testing.T) {
		req := valid()
		req.TermDays = 0
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})

	t.Run("rejects minimum-payment plan without minimum", func(t *testing.T) {
		req := valid()
		req.PlanType = PlanMinimumPayment
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})

	t.Run("rejects installment plan without count or frequency", func(t *testing.T) {
		req := valid()
		req.PlanType = PlanInstallments
		req.InstallmentCount = 0
		req.FrequencyDays = 14
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)

		req.InstallmentCount = 3
		req.FrequencyDays = 0
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})

	t.Run("rejects unknown plan type", func(t *testing.T) {
		req := valid()
		req.PlanType = "weekly"
		assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
	})
}

func TestLoanRequestToLoan(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("traditional loan computes flat interest and due date", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		assert.Equal(t, "50.00", loan.InterestAmount.StringFixed(2))
		assert.Equal(t, "550.00", loan.TotalAmount.StringFixed(2))
		assert.Equal(t, "550.00", loan.BalanceRemaining.StringFixed(2))
		assert.Equal(t, "500.00", loan.PrincipalRemaining.StringFixed(2))
		assert.Equal(t, LoanStatusActive, loan.Status)

		require.NotNil(t, loan.Traditional)
		assert.Nil(t, loan.MinimumPayment)
		assert.Nil(t, loan.Installments)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), loan.Traditional.DueDate)
	})

	t.Run("minimum-payment loan schedules the first due date 30 days out", func(t *testing.T) {
		req := &LoanRequest{
			CustomerID:            1,
			ItemID:                1,
			Amount:                decimal.NewFromInt(500),
			InterestRate:          decimal.NewFromInt(10),
			StartDate:             start,
			PlanType:              PlanMinimumPayment,
			MinimumMonthlyPayment: decimal.NewFromInt(50),
		}
		loan := req.ToLoan()

		require.NotNil(t, loan.MinimumPayment)
		assert.Nil(t, loan.Traditional)
		assert.Nil(t, loan.Installments)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), loan.MinimumPayment.NextPaymentDate)
		assert.Equal(t, DefaultGracePeriodDays, loan.MinimumPayment.GracePeriodDays)
		assert.Equal(t, 0, loan.MinimumPayment.ConsecutiveMissed)
		assert.False(t, loan.MinimumPayment.IsAtRisk)
	})

	t.Run("installment loan defaults the late fee percentage", func(t *testing.T) {
		loan := installmentLoan("500", "10", 3, 30, start)

		require.NotNil(t, loan.Installments)
		assert.True(t, loan.Installments.LateFeePercent.Equal(DefaultLateFeePercent))
	})
}

func TestApplyBalancePayment(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 10)

	t.Run("partial payment reduces the balance and keeps the invariant", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		paidOff := loan.ApplyBalancePayment(decimal.NewFromInt(200), now)

		assert.False(t, paidOff)
		assert.Equal(t, "200.00", loan.AmountPaid.StringFixed(2))
		assert.Equal(t, "350.00", loan.BalanceRemaining.StringFixed(2))
		assert.True(t, loan.BalanceRemaining.Equal(loan.TotalAmount.Sub(loan.AmountPaid)))
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("payments cover interest before principal", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		loan.ApplyBalancePayment(decimal.NewFromInt(30), now)
		assert.Equal(t, "500.00", loan.PrincipalRemaining.StringFixed(2))

		loan.ApplyBalancePayment(decimal.NewFromInt(120), now)
		// 150 paid, 50 interest, 100 against principal
		assert.Equal(t, "400.00", loan.PrincipalRemaining.StringFixed(2))
	})

	t.Run("final payment settles the loan", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		loan.ApplyBalancePayment(decimal.NewFromInt(200), now)
		paidOff := loan.ApplyBalancePayment(decimal.NewFromInt(350), now)

		assert.True(t, paidOff)
		assert.Equal(t, LoanStatusPaid, loan.Status)
		assert.True(t, loan.BalanceRemaining.IsZero())
		assert.True(t, loan.PrincipalRemaining.IsZero())
		require.NotNil(t, loan.PaidDate)
		assert.Equal(t, now, *loan.PaidDate)
	})

	t.Run("overpayment floors the balance at zero", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		paidOff := loan.ApplyBalancePayment(decimal.NewFromInt(600), now)

		assert.True(t, paidOff)
		assert.True(t, loan.BalanceRemaining.IsZero())
		assert.Equal(t, "600.00", loan.AmountPaid.StringFixed(2))
	})
}

func TestSyncInstallmentTotals(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 10)

	loan := installmentLoan("500", "10", 3, 30, start)
	schedule, err := GenerateInstallmentSchedule(loan)
	require.NoError(t, err)

	schedule[0].RegisterPayment(schedule[0].Amount, now, loan.LateFeePercent())
	paidOff := loan.SyncInstallmentTotals(schedule, now)

	assert.False(t, paidOff)
	assert.Equal(t, "183.33", loan.AmountPaid.StringFixed(2))
	assert.Equal(t, "366.67", loan.BalanceRemaining.StringFixed(2))
	assert.Equal(t, "333.33", loan.PrincipalRemaining.StringFixed(2))

	schedule[1].RegisterPayment(schedule[1].Amount, now, loan.LateFeePercent())
	schedule[2].RegisterPayment(schedule[2].Amount, now, loan.LateFeePercent())
	paidOff = loan.SyncInstallmentTotals(schedule, now)

	assert.True(t, paidOff)
	assert.Equal(t, LoanStatusPaid, loan.Status)
	assert.True(t, loan.BalanceRemaining.IsZero())
	assert.True(t, loan.PrincipalRemaining.IsZero())
}

func TestLoanStatusPredicates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("terminal statuses", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		assert.False(t, loan.IsTerminal())

		loan.Status = LoanStatusPaid
		assert.True(t, loan.IsTerminal())

		loan.Status = LoanStatusForfeited
		assert.True(t, loan.IsTerminal())
	})

	t.Run("only traditional active or overdue loans are renewable", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		assert.True(t, loan.IsRenewable())

		loan.Status = LoanStatusOverdue
		assert.True(t, loan.IsRenewable())

		loan.Status = LoanStatusForfeited
		assert.False(t, loan.IsRenewable())

		installment := installmentLoan("500", "10", 3, 30, start)
		assert.False(t, installment.IsRenewable())
	})

	t.Run("traditional overdue is derived from the due date", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		assert.False(t, loan.IsOverdue(loan.Traditional.DueDate))
		assert.True(t, loan.IsOverdue(loan.Traditional.DueDate.AddDate(0, 0, 1)))
		assert.Equal(t, 5, loan.DaysOverdue(loan.Traditional.DueDate.AddDate(0, 0, 5)))

		loan.Status = LoanStatusPaid
		assert.False(t, loan.IsOverdue(loan.Traditional.DueDate.AddDate(0, 0, 10)))
		assert.Equal(t, 0, loan.DaysOverdue(loan.Traditional.DueDate.AddDate(0, 0, 10)))
	})
}

func TestLoanForfeit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 40)

	t.Run("active loan cannot be forfeited", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)

		err := loan.Forfeit(now)

		assert.ErrorIs(t, err, ErrInvalidLoanState)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.Nil(t, loan.ForfeitedDate)
	})

	t.Run("overdue loan is forfeited with a timestamp", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		loan.Status = LoanStatusOverdue

		err := loan.Forfeit(now)

		require.NoError(t, err)
		assert.Equal(t, LoanStatusForfeited, loan.Status)
		require.NotNil(t, loan.ForfeitedDate)
		assert.Equal(t, now, *loan.ForfeitedDate)
	})

	t.Run("forfeited loan stays forfeited", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		loan.Status = LoanStatusOverdue
		require.NoError(t, loan.Forfeit(now))

		assert.ErrorIs(t, loan.Forfeit(now.AddDate(0, 0, 1)), ErrInvalidLoanState)
	})
}
