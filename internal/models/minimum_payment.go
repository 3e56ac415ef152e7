package models

import (
	"time"

	"github.com/shopspring/decimal"

	"pawnshop-service/pkg/money"
)

// The minimum-payment tracker is a small state machine embedded in the loan:
// healthy -> grace -> at_risk, reset to healthy by a qualifying payment.
// All transitions take an explicit time so they stay pure and testable.

// IsPaymentOverdue reports whether the next minimum payment date has passed
// without a qualifying payment resetting it.
func (m *MinimumPaymentTerms) IsPaymentOverdue(now time.Time) bool {
	return now.After(m.NextPaymentDate)
}

// Qualifies reports whether a payment amount meets the minimum threshold.
func (m *MinimumPaymentTerms) Qualifies(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(m.MinimumMonthlyPayment)
}

// Evaluate advances the tracker for a sweep at the given time. A missed due
// date counts once per cycle: the miss counter increments only when the
// grace window for the current due date has not been opened yet, which makes
// repeated sweeps with the same clock idempotent. It returns true when any
// state changed.
func (m *MinimumPaymentTerms) Evaluate(now time.Time) bool {
	if !m.IsPaymentOverdue(now) {
		return false
	}

	changed := false

	graceDays := m.GracePeriodDays
	if graceDays <= 0 {
		graceDays = DefaultGracePeriodDays
	}
	graceEnd := money.AddDays(m.NextPaymentDate, graceDays)

	if m.GracePeriodEndDate == nil || !m.GracePeriodEndDate.Equal(graceEnd) {
		m.ConsecutiveMissed++
		m.GracePeriodEndDate = &graceEnd
		changed = true
	}

	if now.After(*m.GracePeriodEndDate) && !m.IsAtRisk {
		m.IsAtRisk = true
		changed = true
	}

	return changed
}

// RegisterQualifyingPayment resets the tracker to healthy and schedules the
// next minimum payment on the fixed 30-day cadence.
func (m *MinimumPaymentTerms) RegisterQualifyingPayment(now time.Time) {
	paidAt := now
	m.LastPaymentDate = &paidAt
	m.NextPaymentDate = money.AddDays(now, MinimumPaymentIntervalDays)
	m.ConsecutiveMissed = 0
	m.IsAtRisk = false
	m.GracePeriodEndDate = nil
}
