package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod defines how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// PaymentStatus defines the status of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment records one payment received against a loan. Completed payments
// are immutable; cancellation is a status change, never a delete.
type Payment struct {
	ID          int             `json:"id" db:"id"`
	LoanID      int             `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	Method      PaymentMethod   `json:"method" db:"method"`
	Status      PaymentStatus   `json:"status" db:"status"`
	Reference   string          `json:"reference" db:"reference"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// PaymentRequest represents a payment intake request
type PaymentRequest struct {
	LoanID              int             `json:"loan_id"`
	Amount              decimal.Decimal `json:"amount"`
	PaymentDate         time.Time       `json:"payment_date"`
	Method              PaymentMethod   `json:"method"`
	TargetInstallmentID int             `json:"target_installment_id,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// PaymentResult reports the loan state after a payment is applied.
type PaymentResult struct {
	Payment    *Payment        `json:"payment"`
	NewBalance decimal.Decimal `json:"new_balance"`
	NewStatus  LoanStatus      `json:"new_status"`
	PaidOff    bool            `json:"paid_off"`
	// Warning is set when a minimum-payment loan receives less than its
	// minimum; the payment is still accepted.
	Warning string `json:"warning,omitempty"`
}
