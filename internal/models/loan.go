package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pawnshop-service/pkg/money"
)

// LoanStatus defines the status of a loan
type LoanStatus string

const (
	// LoanStatusPending is never produced by origination: disbursement
	// happens at the counter, so new loans start active. The status is
	// accepted on rows created outside this service.
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusOverdue   LoanStatus = "overdue"
	LoanStatusPaid      LoanStatus = "paid"
	LoanStatusForfeited LoanStatus = "forfeited"
)

// PlanType selects which payment-plan variant governs a loan
type PlanType string

const (
	PlanTraditional    PlanType = "traditional"
	PlanMinimumPayment PlanType = "minimum_payment"
	PlanInstallments   PlanType = "installments"
)

const (
	// MinimumPaymentIntervalDays is the fixed cadence between minimum
	// payments, independent of calendar month length.
	MinimumPaymentIntervalDays = 30

	// DefaultGracePeriodDays applies when a loan has no explicit grace config.
	DefaultGracePeriodDays = 5
)

// DefaultLateFeePercent applies when an installment loan has no explicit
// late-fee percentage.
var DefaultLateFeePercent = decimal.NewFromFloat(5.00)

// TraditionalTerms holds the fields of a single-due-date balloon loan.
type TraditionalTerms struct {
	TermDays int       `json:"term_days" db:"term_days"`
	DueDate  time.Time `json:"due_date" db:"due_date"`
}

// MinimumPaymentTerms holds the recurring-minimum-payment tracker state.
type MinimumPaymentTerms struct {
	MinimumMonthlyPayment decimal.Decimal `json:"minimum_monthly_payment" db:"minimum_monthly_payment"`
	NextPaymentDate       time.Time       `json:"next_payment_date" db:"next_payment_date"`
	LastPaymentDate       *time.Time      `json:"last_payment_date,omitempty" db:"last_payment_date"`
	GracePeriodDays       int             `json:"grace_period_days" db:"grace_period_days"`
	GracePeriodEndDate    *time.Time      `json:"grace_period_end_date,omitempty" db:"grace_period_end_date"`
	ConsecutiveMissed     int             `json:"consecutive_missed_payments" db:"consecutive_missed_payments"`
	IsAtRisk              bool            `json:"is_at_risk" db:"is_at_risk"`
}

// InstallmentTerms holds the fixed-installment plan configuration.
type InstallmentTerms struct {
	Count             int             `json:"installment_count" db:"installment_count"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	FrequencyDays     int             `json:"frequency_days" db:"frequency_days"`
	LateFeePercent    decimal.Decimal `json:"late_fee_percent" db:"late_fee_percent"`
}

// Loan is the aggregate root of the lending engine. Exactly one of the
// plan-term structs is non-nil, matching PlanType, so plan-specific fields
// cannot be read on the wrong variant.
type Loan struct {
	ID                  int             `json:"id" db:"id"`
	CustomerID          int             `json:"customer_id" db:"customer_id"`
	ItemID              int             `json:"item_id" db:"item_id"`
	Amount              decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate        decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	OverdueInterestRate decimal.Decimal `json:"overdue_interest_rate" db:"overdue_interest_rate"`
	InterestAmount      decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPaid          decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	BalanceRemaining    decimal.Decimal `json:"balance_remaining" db:"balance_remaining"`
	PrincipalRemaining  decimal.Decimal `json:"principal_remaining" db:"principal_remaining"`
	StartDate           time.Time       `json:"start_date" db:"start_date"`
	Status              LoanStatus      `json:"status" db:"status"`
	PlanType            PlanType        `json:"payment_plan_type" db:"payment_plan_type"`

	Traditional    *TraditionalTerms    `json:"traditional,omitempty"`
	MinimumPayment *MinimumPaymentTerms `json:"minimum_payment,omitempty"`
	Installments   *InstallmentTerms    `json:"installments,omitempty"`

	ForfeitedDate *time.Time `json:"forfeited_date,omitempty" db:"forfeited_date"`
	PaidDate      *time.Time `json:"paid_date,omitempty" db:"paid_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// LoanRequest represents a loan origination request
type LoanRequest struct {
	CustomerID          int             `json:"customer_id"`
	ItemID              int             `json:"item_id"`
	Amount              decimal.Decimal `json:"loan_amount"`
	InterestRate        decimal.Decimal `json:"interest_rate,omitempty"` // optional, defaults from the key-rate service
	OverdueInterestRate decimal.Decimal `json:"overdue_interest_rate,omitempty"`
	StartDate           time.Time       `json:"start_date"`
	PlanType            PlanType        `json:"payment_plan_type"`

	// Traditional plan
	TermDays int `json:"term_days,omitempty"`

	// Minimum-payment plan
	MinimumMonthlyPayment decimal.Decimal `json:"minimum_monthly_payment,omitempty"`
	GracePeriodDays       int             `json:"grace_period_days,omitempty"`

	// Installment plan
	InstallmentCount int             `json:"installment_count,omitempty"`
	FrequencyDays    int             `json:"frequency_days,omitempty"`
	LateFeePercent   decimal.Decimal `json:"late_fee_percent,omitempty"`
}

// Validate checks plan-specific required fields of a loan request.
func (r *LoanRequest) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: loan amount must be positive", ErrInvalidScheduleParameters)
	}

	if r.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidScheduleParameters)
	}

	switch r.PlanType {
	case PlanTraditional:
		if r.TermDays <= 0 {
			return fmt.Errorf("%w: traditional plan requires a positive term in days", ErrInvalidScheduleParameters)
		}
	case PlanMinimumPayment:
		if r.MinimumMonthlyPayment.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: minimum-payment plan requires a positive minimum monthly payment", ErrInvalidScheduleParameters)
		}
	case PlanInstallments:
		if r.InstallmentCount <= 0 {
			return fmt.Errorf("%w: installment plan requires a positive installment count", ErrInvalidScheduleParameters)
		}
		if r.FrequencyDays <= 0 {
			return fmt.Errorf("%w: installment plan requires a positive frequency in days", ErrInvalidScheduleParameters)
		}
	default:
		return fmt.Errorf("%w: unknown payment plan type %q", ErrInvalidScheduleParameters, r.PlanType)
	}

	return nil
}

// ToLoan converts a validated LoanRequest into a Loan aggregate with the
// plan-appropriate term variant populated and totals computed. Interest is
// flat: principal * rate / 100.
func (r *LoanRequest) ToLoan() *Loan {
	interest := money.Percent(r.Amount, r.InterestRate)

	loan := &Loan{
		CustomerID:          r.CustomerID,
		ItemID:              r.ItemID,
		Amount:              r.Amount,
		InterestRate:        r.InterestRate,
		OverdueInterestRate: r.OverdueInterestRate,
		InterestAmount:      interest,
		TotalAmount:         r.Amount.Add(interest),
		AmountPaid:          decimal.Zero,
		BalanceRemaining:    r.Amount.Add(interest),
		PrincipalRemaining:  r.Amount,
		StartDate:           r.StartDate,
		Status:              LoanStatusActive,
		PlanType:            r.PlanType,
	}

	switch r.PlanType {
	case PlanTraditional:
		loan.Traditional = &TraditionalTerms{
			TermDays: r.TermDays,
			DueDate:  money.AddDays(r.StartDate, r.TermDays),
		}
	case PlanMinimumPayment:
		graceDays := r.GracePeriodDays
		if graceDays <= 0 {
			graceDays = DefaultGracePeriodDays
		}
		loan.MinimumPayment = &MinimumPaymentTerms{
			MinimumMonthlyPayment: r.MinimumMonthlyPayment,
			NextPaymentDate:       money.AddDays(r.StartDate, MinimumPaymentIntervalDays),
			GracePeriodDays:       graceDays,
		}
	case PlanInstallments:
		lateFee := r.LateFeePercent
		if lateFee.LessThanOrEqual(decimal.Zero) {
			lateFee = DefaultLateFeePercent
		}
		loan.Installments = &InstallmentTerms{
			Count:          r.InstallmentCount,
			FrequencyDays:  r.FrequencyDays,
			LateFeePercent: lateFee,
		}
	}

	return loan
}

// IsTerminal reports whether the loan reached a terminal status.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusPaid || l.Status == LoanStatusForfeited
}

// IsRenewable reports whether a renewal may be processed.
func (l *Loan) IsRenewable() bool {
	return l.PlanType == PlanTraditional && (l.Status == LoanStatusActive || l.Status == LoanStatusOverdue)
}

// IsOverdue reports whether the loan is past due at the given time. For
// traditional loans this is the derived predicate; the persisted status is
// promoted by the overdue sweep. Installment and minimum-payment loans
// delegate to their sub-ledgers, so here only the persisted status and the
// tracker state are consulted.
func (l *Loan) IsOverdue(now time.Time) bool {
	if l.IsTerminal() {
		return false
	}
	if l.Status == LoanStatusOverdue {
		return true
	}

	switch l.PlanType {
	case PlanTraditional:
		return now.After(l.Traditional.DueDate)
	case PlanMinimumPayment:
		return l.MinimumPayment.IsPaymentOverdue(now)
	default:
		return false
	}
}

// DaysOverdue returns the number of whole days the loan is past due, or 0.
func (l *Loan) DaysOverdue(now time.Time) int {
	if l.IsTerminal() {
		return 0
	}

	switch l.PlanType {
	case PlanTraditional:
		return money.DaysBetween(l.Traditional.DueDate, now)
	case PlanMinimumPayment:
		return money.DaysBetween(l.MinimumPayment.NextPaymentDate, now)
	default:
		return 0
	}
}

// ApplyBalancePayment credits a payment directly against the loan balance
// (traditional and minimum-payment plans). The balance is floored at zero
// and the loan is marked paid when it reaches zero. It returns true when the
// payment settles the loan.
//
// Interest is not recomputed to decline with principal here: proportional
// interest reduction on partial payment is documented to the customer but
// was never implemented in the balance engine, and that gap is preserved.
func (l *Loan) ApplyBalancePayment(amount decimal.Decimal, now time.Time) bool {
	l.AmountPaid = money.Round2(l.AmountPaid.Add(amount))
	l.BalanceRemaining = money.Clamp(money.Round2(l.TotalAmount.Sub(l.AmountPaid)))

	principalPaid := l.AmountPaid.Sub(l.InterestAmount)
	l.PrincipalRemaining = money.Clamp(money.Round2(l.Amount.Sub(money.Clamp(principalPaid))))

	if l.BalanceRemaining.IsZero() {
		l.markPaid(now)
		return true
	}
	return false
}

// SyncInstallmentTotals recomputes the loan aggregates from its installment
// states. This is the explicit recompute-and-persist step that keeps the
// balance invariant auditable after every child mutation.
func (l *Loan) SyncInstallmentTotals(installments []*Installment, now time.Time) bool {
	paid := decimal.Zero
	principalPaid := decimal.Zero
	for _, inst := range installments {
		paid = paid.Add(inst.PaidAmount)
		if inst.Status == InstallmentStatusPaid {
			principalPaid = principalPaid.Add(inst.PrincipalAmount)
		}
	}

	l.AmountPaid = money.Round2(paid)
	l.BalanceRemaining = money.Clamp(money.Round2(l.TotalAmount.Sub(l.AmountPaid)))
	l.PrincipalRemaining = money.Clamp(money.Round2(l.Amount.Sub(principalPaid)))

	if l.BalanceRemaining.IsZero() {
		l.markPaid(now)
		return true
	}
	return false
}

func (l *Loan) markPaid(now time.Time) {
	l.Status = LoanStatusPaid
	paidAt := now
	l.PaidDate = &paidAt
}

// OverdueReason returns a short human-readable reason the loan is flagged,
// or an empty string. Pure projection for reporting collaborators.
func (l *Loan) OverdueReason(now time.Time) string {
	switch l.PlanType {
	case PlanTraditional:
		if days := l.DaysOverdue(now); days > 0 {
			return fmt.Sprintf("due date passed %d day(s) ago", days)
		}
	case PlanMinimumPayment:
		mp := l.MinimumPayment
		if mp.IsAtRisk {
			return fmt.Sprintf("at risk: %d consecutive minimum payment(s) missed", mp.ConsecutiveMissed)
		}
		if mp.IsPaymentOverdue(now) {
			return "minimum payment overdue"
		}
	case PlanInstallments:
		if l.Status == LoanStatusOverdue {
			return "one or more installments overdue"
		}
	}
	return ""
}

// NextPaymentDescription describes the next expected payment. Pure
// projection for reporting collaborators.
func (l *Loan) NextPaymentDescription() string {
	if l.IsTerminal() {
		return "no further payments due"
	}

	switch l.PlanType {
	case PlanTraditional:
		return fmt.Sprintf("%s due on %s", l.BalanceRemaining.StringFixed(2), l.Traditional.DueDate.Format("2006-01-02"))
	case PlanMinimumPayment:
		return fmt.Sprintf("minimum payment of %s due on %s",
			l.MinimumPayment.MinimumMonthlyPayment.StringFixed(2),
			l.MinimumPayment.NextPaymentDate.Format("2006-01-02"))
	case PlanInstallments:
		return fmt.Sprintf("installment of %s every %d day(s)",
			l.Installments.InstallmentAmount.StringFixed(2), l.Installments.FrequencyDays)
	}
	return ""
}

// LateFeePercent returns the configured late-fee percentage for installment
// loans, falling back to the default when unset.
func (l *Loan) LateFeePercent() decimal.Decimal {
	if l.Installments == nil || l.Installments.LateFeePercent.LessThanOrEqual(decimal.Zero) {
		return DefaultLateFeePercent
	}
	return l.Installments.LateFeePercent
}
