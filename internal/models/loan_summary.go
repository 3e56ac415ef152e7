package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanSummary is a read-only projection of a loan's financial state for
// reporting and export collaborators. It is derived purely from stored
// entities and never mutates anything.
type LoanSummary struct {
	LoanID             int             `json:"loan_id"`
	Status             LoanStatus      `json:"status"`
	PlanType           PlanType        `json:"payment_plan_type"`
	Principal          decimal.Decimal `json:"principal"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	BalanceRemaining   decimal.Decimal `json:"balance_remaining"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	DaysOverdue        int             `json:"days_overdue"`
	OverdueReason      string          `json:"overdue_reason,omitempty"`
	NextPayment        string          `json:"next_payment"`
}

// ScheduleSummary aggregates the state of an installment schedule.
type ScheduleSummary struct {
	TotalInstallments     int             `json:"total_installments"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	TotalPrincipal        decimal.Decimal `json:"total_principal"`
	TotalInterest         decimal.Decimal `json:"total_interest"`
	PaidInstallments      int             `json:"paid_installments"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	OverdueInstallments   int             `json:"overdue_installments"`
	OverdueAmount         decimal.Decimal `json:"overdue_amount"`
	RemainingInstallments int             `json:"remaining_installments"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount"`
	TotalLateFees         decimal.Decimal `json:"total_late_fees"`
}

// NewLoanSummary builds the reporting projection for a loan at a point in
// time.
func NewLoanSummary(loan *Loan, now time.Time) *LoanSummary {
	return &LoanSummary{
		LoanID:             loan.ID,
		Status:             loan.Status,
		PlanType:           loan.PlanType,
		Principal:          loan.Amount,
		TotalAmount:        loan.TotalAmount,
		AmountPaid:         loan.AmountPaid,
		BalanceRemaining:   loan.BalanceRemaining,
		PrincipalRemaining: loan.PrincipalRemaining,
		DaysOverdue:        loan.DaysOverdue(now),
		OverdueReason:      loan.OverdueReason(now),
		NextPayment:        loan.NextPaymentDescription(),
	}
}

// CalculateScheduleSummary aggregates installment statistics for a schedule.
func CalculateScheduleSummary(installments []*Installment) *ScheduleSummary {
	summary := &ScheduleSummary{TotalInstallments: len(installments)}

	summary.TotalAmount = decimal.Zero
	summary.TotalPrincipal = decimal.Zero
	summary.TotalInterest = decimal.Zero
	summary.PaidAmount = decimal.Zero
	summary.OverdueAmount = decimal.Zero
	summary.RemainingAmount = decimal.Zero
	summary.TotalLateFees = decimal.Zero

	for _, inst := range installments {
		summary.TotalAmount = summary.TotalAmount.Add(inst.Amount)
		summary.TotalPrincipal = summary.TotalPrincipal.Add(inst.PrincipalAmount)
		summary.TotalInterest = summary.TotalInterest.Add(inst.InterestAmount)
		summary.TotalLateFees = summary.TotalLateFees.Add(inst.LateFee)

		switch inst.Status {
		case InstallmentStatusPaid:
			summary.PaidInstallments++
			summary.PaidAmount = summary.PaidAmount.Add(inst.PaidAmount)
		case InstallmentStatusOverdue:
			summary.OverdueInstallments++
			summary.OverdueAmount = summary.OverdueAmount.Add(inst.BalanceRemaining)
			summary.RemainingInstallments++
			summary.RemainingAmount = summary.RemainingAmount.Add(inst.BalanceRemaining)
		default:
			summary.RemainingInstallments++
			summary.RemainingAmount = summary.RemainingAmount.Add(inst.BalanceRemaining)
		}
	}

	return summary
}
