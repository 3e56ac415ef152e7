package models

import "errors"

// Sentinel errors for the loan engine. Callers match them with errors.Is
// after the service layer wraps them with context.
var (
	// ErrInvalidScheduleParameters is returned when installment schedule
	// generation receives a non-positive principal, count or frequency.
	ErrInvalidScheduleParameters = errors.New("invalid schedule parameters")

	// ErrInvalidLoanState is returned when an action is attempted from a
	// status that does not permit it (e.g. renewing a paid loan).
	ErrInvalidLoanState = errors.New("invalid loan state")

	// ErrInvalidPaymentAmount is returned for zero or negative payment amounts.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
