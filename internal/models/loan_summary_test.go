package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoanSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	loan := traditionalLoan("500", "10", 30, start)
	loan.ApplyBalancePayment(decimal.NewFromInt(200), start.AddDate(0, 0, 10))

	now := loan.Traditional.DueDate.AddDate(0, 0, 3)
	summary := NewLoanSummary(loan, now)

	assert.Equal(t, "350.00", summary.BalanceRemaining.StringFixed(2))
	assert.Equal(t, "200.00", summary.AmountPaid.StringFixed(2))
	assert.Equal(t, 3, summary.DaysOverdue)
	assert.Equal(t, "due date passed 3 day(s) ago", summary.OverdueReason)
	assert.Contains(t, summary.NextPayment, "350.00")
}

func TestCalculateScheduleSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := installmentLoan("500", "10", 3, 30, start)

	schedule, err := GenerateInstallmentSchedule(loan)
	require.NoError(t, err)

	// First installment paid on time, second overdue, third pending
	schedule[0].RegisterPayment(schedule[0].Amount, schedule[0].DueDate.AddDate(0, 0, -1), loan.LateFeePercent())
	schedule[1].UpdateStatus(schedule[1].DueDate.AddDate(0, 0, 2), loan.LateFeePercent())

	summary := CalculateScheduleSummary(schedule)

	assert.Equal(t, 3, summary.TotalInstallments)
	assert.Equal(t, "550.00", summary.TotalAmount.StringFixed(2))
	assert.Equal(t, "500.00", summary.TotalPrincipal.StringFixed(2))
	assert.Equal(t, "50.00", summary.TotalInterest.StringFixed(2))

	assert.Equal(t, 1, summary.PaidInstallments)
	assert.Equal(t, "183.33", summary.PaidAmount.StringFixed(2))

	// Overdue installments count in both the overdue and remaining buckets
	assert.Equal(t, 1, summary.OverdueInstallments)
	assert.Equal(t, "183.33", summary.OverdueAmount.StringFixed(2))
	assert.Equal(t, 2, summary.RemainingInstallments)
	assert.Equal(t, "366.67", summary.RemainingAmount.StringFixed(2))

	// 5% of the overdue installment's balance
	assert.Equal(t, "9.17", summary.TotalLateFees.StringFixed(2))
}
