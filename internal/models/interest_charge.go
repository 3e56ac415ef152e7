package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestChargeType classifies an interest accrual event
type InterestChargeType string

const (
	InterestChargeDaily   InterestChargeType = "daily"
	InterestChargeOverdue InterestChargeType = "overdue"
	InterestChargePenalty InterestChargeType = "penalty"
	InterestChargeLateFee InterestChargeType = "late_fee"
)

// InterestCharge is an append-only audit record of one interest accrual
// event on a loan. Records are created once and never mutated.
type InterestCharge struct {
	ID              int                `json:"id" db:"id"`
	LoanID          int                `json:"loan_id" db:"loan_id"`
	ChargeDate      time.Time          `json:"charge_date" db:"charge_date"`
	DaysOverdue     int                `json:"days_overdue" db:"days_overdue"`
	InterestRate    decimal.Decimal    `json:"interest_rate" db:"interest_rate"`
	PrincipalAmount decimal.Decimal    `json:"principal_amount" db:"principal_amount"`
	InterestAmount  decimal.Decimal    `json:"interest_amount" db:"interest_amount"`
	BalanceBefore   decimal.Decimal    `json:"balance_before" db:"balance_before"`
	BalanceAfter    decimal.Decimal    `json:"balance_after" db:"balance_after"`
	ChargeType      InterestChargeType `json:"charge_type" db:"charge_type"`
	Applied         bool               `json:"applied" db:"applied"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}
