package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenewalRequestValidate(t *testing.T) {
	valid := func() *RenewalRequest {
		return &RenewalRequest{
			LoanID:        1,
			ExtensionDays: 30,
			InterestRate:  decimal.NewFromInt(10),
			RenewalFee:    decimal.NewFromInt(5),
			Strategy:      RenewalInterestFlat,
		}
	}

	assert.NoError(t, valid().Validate())

	req := valid()
	req.ExtensionDays = 0
	assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)

	req = valid()
	req.InterestRate = decimal.NewFromInt(-1)
	assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)

	req = valid()
	req.RenewalFee = decimal.NewFromInt(-1)
	assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)

	req = valid()
	req.Strategy = ""
	assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)

	req = valid()
	req.Strategy = "compound"
	assert.ErrorIs(t, req.Validate(), ErrInvalidScheduleParameters)
}

func TestRenewalInterest(t *testing.T) {
	principal := decimal.NewFromInt(500)
	rate := decimal.NewFromInt(10)

	t.Run("flat charges the full rate regardless of extension", func(t *testing.T) {
		interest, err := RenewalInterest(RenewalInterestFlat, principal, rate, 15, 30)
		require.NoError(t, err)
		assert.Equal(t, "50.00", interest.StringFixed(2))

		interest, err = RenewalInterest(RenewalInterestFlat, principal, rate, 90, 30)
		require.NoError(t, err)
		assert.Equal(t, "50.00", interest.StringFixed(2))
	})

	t.Run("prorated scales by extension over term", func(t *testing.T) {
		interest, err := RenewalInterest(RenewalInterestProrated, principal, rate, 30, 30)
		require.NoError(t, err)
		assert.Equal(t, "50.00", interest.StringFixed(2))

		interest, err = RenewalInterest(RenewalInterestProrated, principal, rate, 15, 30)
		require.NoError(t, err)
		assert.Equal(t, "25.00", interest.StringFixed(2))

		interest, err = RenewalInterest(RenewalInterestProrated, principal, rate, 10, 30)
		require.NoError(t, err)
		assert.Equal(t, "16.67", interest.StringFixed(2))
	})

	t.Run("prorated requires a positive term", func(t *testing.T) {
		_, err := RenewalInterest(RenewalInterestProrated, principal, rate, 30, 0)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		_, err := RenewalInterest("compound", principal, rate, 30, 30)
		assert.ErrorIs(t, err, ErrInvalidScheduleParameters)
	})
}

func TestApplyRenewal(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	newRenewal := func(loan *Loan) *LoanRenewal {
		return &LoanRenewal{
			LoanID:          loan.ID,
			PreviousDueDate: loan.Traditional.DueDate,
			NewDueDate:      loan.Traditional.DueDate.AddDate(0, 0, 30),
			ExtensionDays:   30,
			RenewalFee:      decimal.NewFromInt(5),
			InterestRate:    decimal.NewFromInt(10),
			InterestAmount:  decimal.NewFromInt(50),
		}
	}

	t.Run("renewal moves the due date and adds interest and fee to the debt", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		// Due 2024-02-01; a 30-day extension lands on 2024-03-02
		require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), loan.Traditional.DueDate)

		renewal := newRenewal(loan)
		require.NoError(t, loan.ApplyRenewal(renewal))

		assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), loan.Traditional.DueDate)
		assert.Equal(t, "105.00", loan.InterestAmount.StringFixed(2))
		assert.Equal(t, "605.00", loan.TotalAmount.StringFixed(2))
		assert.Equal(t, "605.00", loan.BalanceRemaining.StringFixed(2))
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.True(t, loan.BalanceRemaining.Equal(loan.TotalAmount.Sub(loan.AmountPaid)))
	})

	t.Run("renewal returns an overdue loan to active", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		loan.Status = LoanStatusOverdue

		require.NoError(t, loan.ApplyRenewal(newRenewal(loan)))
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("renewal is rejected on non-renewable loans", func(t *testing.T) {
		loan := traditionalLoan("500", "10", 30, start)
		loan.Status = LoanStatusForfeited
		assert.ErrorIs(t, loan.ApplyRenewal(newRenewal(loan)), ErrInvalidLoanState)

		paid := traditionalLoan("500", "10", 30, start)
		paid.Status = LoanStatusPaid
		assert.ErrorIs(t, paid.ApplyRenewal(newRenewal(paid)), ErrInvalidLoanState)

		installment := installmentLoan("500", "10", 3, 30, start)
		renewal := &LoanRenewal{
			NewDueDate:     start.AddDate(0, 0, 60),
			InterestAmount: decimal.NewFromInt(50),
		}
		assert.ErrorIs(t, installment.ApplyRenewal(renewal), ErrInvalidLoanState)
	})
}
