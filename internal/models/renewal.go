package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pawnshop-service/pkg/money"
)

// RenewalInterestStrategy names how renewal interest is computed. The source
// system carried two formulas side by side, so both are exposed as named
// strategies and the caller must choose one.
type RenewalInterestStrategy string

const (
	// RenewalInterestFlat charges principal * rate / 100 regardless of the
	// extension length (the interactive renewal path).
	RenewalInterestFlat RenewalInterestStrategy = "flat"

	// RenewalInterestProrated scales the flat charge by
	// extensionDays / termDays (the batch renewal path).
	RenewalInterestProrated RenewalInterestStrategy = "prorated"
)

// LoanRenewal is an immutable history record of one renewal action.
type LoanRenewal struct {
	ID              int             `json:"id" db:"id"`
	LoanID          int             `json:"loan_id" db:"loan_id"`
	PreviousDueDate time.Time       `json:"previous_due_date" db:"previous_due_date"`
	NewDueDate      time.Time       `json:"new_due_date" db:"new_due_date"`
	ExtensionDays   int             `json:"extension_days" db:"extension_days"`
	RenewalFee      decimal.Decimal `json:"renewal_fee" db:"renewal_fee"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestAmount  decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	ProcessedBy     int             `json:"processed_by" db:"processed_by"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// RenewalRequest carries the parameters of a renewal action.
type RenewalRequest struct {
	LoanID        int                     `json:"loan_id"`
	ExtensionDays int                     `json:"extension_days"`
	InterestRate  decimal.Decimal         `json:"interest_rate"`
	RenewalFee    decimal.Decimal         `json:"renewal_fee"`
	Strategy      RenewalInterestStrategy `json:"strategy"`
	Notes         string                  `json:"notes,omitempty"`
	ProcessedBy   int                     `json:"-"`
}

// Validate checks the renewal request parameters.
func (r *RenewalRequest) Validate() error {
	if r.ExtensionDays <= 0 {
		return fmt.Errorf("%w: extension days must be positive", ErrInvalidScheduleParameters)
	}
	if r.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidScheduleParameters)
	}
	if r.RenewalFee.IsNegative() {
		return fmt.Errorf("%w: renewal fee cannot be negative", ErrInvalidScheduleParameters)
	}
	switch r.Strategy {
	case RenewalInterestFlat, RenewalInterestProrated:
	case "":
		return fmt.Errorf("%w: renewal interest strategy is required", ErrInvalidScheduleParameters)
	default:
		return fmt.Errorf("%w: unknown renewal interest strategy %q", ErrInvalidScheduleParameters, r.Strategy)
	}
	return nil
}

// RenewalInterest computes the incremental interest of a renewal under the
// chosen strategy.
func RenewalInterest(strategy RenewalInterestStrategy, principal, rate decimal.Decimal, extensionDays, termDays int) (decimal.Decimal, error) {
	flat := money.Percent(principal, rate)

	switch strategy {
	case RenewalInterestFlat:
		return flat, nil
	case RenewalInterestProrated:
		if termDays <= 0 {
			return decimal.Zero, fmt.Errorf("%w: prorated renewal needs a positive loan term", ErrInvalidScheduleParameters)
		}
		ratio := decimal.NewFromInt(int64(extensionDays)).Div(decimal.NewFromInt(int64(termDays)))
		return money.Round2(flat.Mul(ratio)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown renewal interest strategy %q", ErrInvalidScheduleParameters, strategy)
	}
}

// ApplyRenewal mutates the loan for an accepted renewal: the due date moves
// forward and interest plus fee are added to the amounts owed. An overdue
// loan returns to active. The caller persists the matching LoanRenewal
// record in the same unit of work.
func (l *Loan) ApplyRenewal(renewal *LoanRenewal) error {
	if !l.IsRenewable() {
		return fmt.Errorf("%w: loan %d has status %s and cannot be renewed", ErrInvalidLoanState, l.ID, l.Status)
	}

	added := renewal.InterestAmount.Add(renewal.RenewalFee)
	l.InterestAmount = money.Round2(l.InterestAmount.Add(added))
	l.TotalAmount = money.Round2(l.TotalAmount.Add(added))
	l.BalanceRemaining = money.Round2(l.BalanceRemaining.Add(added))
	l.Traditional.DueDate = renewal.NewDueDate
	l.Status = LoanStatusActive

	return nil
}
