package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pawnshop-service/pkg/money"
)

// InstallmentStatus defines the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending       InstallmentStatus = "pending"
	InstallmentStatusPartiallyPaid InstallmentStatus = "partially_paid"
	InstallmentStatusOverdue       InstallmentStatus = "overdue"
	InstallmentStatusPaid          InstallmentStatus = "paid"
)

// Installment is one scheduled payment of an installment-plan loan.
type Installment struct {
	ID               int               `json:"id" db:"id"`
	LoanID           int               `json:"loan_id" db:"loan_id"`
	Number           int               `json:"installment_number" db:"installment_number"`
	DueDate          time.Time         `json:"due_date" db:"due_date"`
	Amount           decimal.Decimal   `json:"amount" db:"amount"`
	PrincipalAmount  decimal.Decimal   `json:"principal_amount" db:"principal_amount"`
	InterestAmount   decimal.Decimal   `json:"interest_amount" db:"interest_amount"`
	PaidAmount       decimal.Decimal   `json:"paid_amount" db:"paid_amount"`
	BalanceRemaining decimal.Decimal   `json:"balance_remaining" db:"balance_remaining"`
	LateFee          decimal.Decimal   `json:"late_fee" db:"late_fee"`
	DaysOverdue      int               `json:"days_overdue" db:"days_overdue"`
	Status           InstallmentStatus `json:"status" db:"status"`
	PaidDate         *time.Time        `json:"paid_date,omitempty" db:"paid_date"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// GenerateInstallmentSchedule produces the ordered installment records for an
// installment-plan loan. Interest is flat (principal * rate / 100); the last
// installment absorbs the rounding remainder so the amounts sum exactly to
// principal + interest, and likewise for the principal/interest split.
func GenerateInstallmentSchedule(loan *Loan) ([]*Installment, error) {
	if loan.Installments == nil {
		return nil, fmt.Errorf("%w: loan has no installment terms", ErrInvalidScheduleParameters)
	}

	terms := loan.Installments
	if loan.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive", ErrInvalidScheduleParameters)
	}
	if terms.Count <= 0 {
		return nil, fmt.Errorf("%w: installment count must be positive", ErrInvalidScheduleParameters)
	}
	if terms.FrequencyDays <= 0 {
		return nil, fmt.Errorf("%w: frequency days must be positive", ErrInvalidScheduleParameters)
	}
	if loan.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidScheduleParameters)
	}

	count := decimal.NewFromInt(int64(terms.Count))
	totalInterest := money.Percent(loan.Amount, loan.InterestRate)
	total := loan.Amount.Add(totalInterest)

	installmentAmount := money.Round2(total.Div(count))
	principalPortion := money.Round2(loan.Amount.Div(count))
	interestPortion := installmentAmount.Sub(principalPortion)

	schedule := make([]*Installment, 0, terms.Count)
	sumAmount := decimal.Zero
	sumPrincipal := decimal.Zero

	for i := 1; i <= terms.Count; i++ {
		amount := installmentAmount
		principal := principalPortion
		interest := interestPortion

		if i == terms.Count {
			// Last installment absorbs rounding remainders.
			amount = total.Sub(sumAmount)
			principal = loan.Amount.Sub(sumPrincipal)
			interest = amount.Sub(principal)
		}

		schedule = append(schedule, &Installment{
			LoanID:           loan.ID,
			Number:           i,
			DueDate:          money.AddDays(loan.StartDate, i*terms.FrequencyDays),
			Amount:           amount,
			PrincipalAmount:  principal,
			InterestAmount:   interest,
			PaidAmount:       decimal.Zero,
			BalanceRemaining: amount,
			LateFee:          decimal.Zero,
			Status:           InstallmentStatusPending,
		})

		sumAmount = sumAmount.Add(amount)
		sumPrincipal = sumPrincipal.Add(principal)
	}

	return schedule, nil
}

// IsOverdue reports whether the installment is unpaid and past its due date.
func (i *Installment) IsOverdue(now time.Time) bool {
	return i.Status != InstallmentStatusPaid && now.After(i.DueDate)
}

// DaysOverdueAt returns the days past due at the given time, or 0.
func (i *Installment) DaysOverdueAt(now time.Time) int {
	if !i.IsOverdue(now) {
		return 0
	}
	return money.DaysBetween(i.DueDate, now)
}

// LateFeeAt computes the late fee on the remaining balance at the given
// late-fee percentage, or zero when the installment is not overdue.
func (i *Installment) LateFeeAt(now time.Time, lateFeePercent decimal.Decimal) decimal.Decimal {
	if !i.IsOverdue(now) {
		return decimal.Zero
	}
	return money.Percent(i.BalanceRemaining, lateFeePercent)
}

// RegisterPayment credits a payment against this installment only; payments
// are never spread to other installments unless the caller targets them.
func (i *Installment) RegisterPayment(amount decimal.Decimal, now time.Time, lateFeePercent decimal.Decimal) {
	i.PaidAmount = money.Round2(i.PaidAmount.Add(amount))
	i.BalanceRemaining = money.Clamp(money.Round2(i.Amount.Sub(i.PaidAmount)))
	i.UpdateStatus(now, lateFeePercent)
}

// UpdateStatus recomputes the installment status from its payment state and
// the given time. When overdue, days overdue and the late fee are recomputed
// as a side effect so the sweep can persist them.
func (i *Installment) UpdateStatus(now time.Time, lateFeePercent decimal.Decimal) {
	switch {
	case i.PaidAmount.GreaterThanOrEqual(i.Amount):
		i.Status = InstallmentStatusPaid
		i.DaysOverdue = 0
		i.LateFee = decimal.Zero
		if i.PaidDate == nil {
			paidAt := now
			i.PaidDate = &paidAt
		}
	case i.PaidAmount.GreaterThan(decimal.Zero):
		i.Status = InstallmentStatusPartiallyPaid
		i.refreshOverdue(now, lateFeePercent)
	case now.After(i.DueDate):
		i.Status = InstallmentStatusOverdue
		i.refreshOverdue(now, lateFeePercent)
	default:
		i.Status = InstallmentStatusPending
	}
}

func (i *Installment) refreshOverdue(now time.Time, lateFeePercent decimal.Decimal) {
	if now.After(i.DueDate) {
		i.DaysOverdue = money.DaysBetween(i.DueDate, now)
		i.LateFee = money.Percent(i.BalanceRemaining, lateFeePercent)
	}
}

// EarliestUnpaid returns the unpaid installment with the lowest number, the
// default payment target when the caller does not name one.
func EarliestUnpaid(installments []*Installment) *Installment {
	var target *Installment
	for _, inst := range installments {
		if inst.Status == InstallmentStatusPaid {
			continue
		}
		if target == nil || inst.Number < target.Number {
			target = inst
		}
	}
	return target
}

// AnyOverdue reports whether any installment is in overdue status.
func AnyOverdue(installments []*Installment) bool {
	for _, inst := range installments {
		if inst.Status == InstallmentStatusOverdue {
			return true
		}
	}
	return false
}
