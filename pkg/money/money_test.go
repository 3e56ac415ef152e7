package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, "183.33", Round2(decimal.RequireFromString("183.333333")).StringFixed(2))
	assert.Equal(t, "183.34", Round2(decimal.RequireFromString("183.335")).StringFixed(2))
	assert.Equal(t, "100.00", Round2(decimal.NewFromInt(100)).StringFixed(2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "50.00", Percent(decimal.NewFromInt(500), decimal.NewFromInt(10)).StringFixed(2))
	assert.Equal(t, "12.50", Percent(decimal.NewFromInt(250), decimal.NewFromInt(5)).StringFixed(2))
	assert.Equal(t, "0.00", Percent(decimal.NewFromInt(500), decimal.Zero).StringFixed(2))
	// Rounds half up
	assert.Equal(t, "33.33", Percent(decimal.RequireFromString("333.33"), decimal.NewFromInt(10)).StringFixed(2))
}

func TestClamp(t *testing.T) {
	assert.True(t, Clamp(decimal.NewFromInt(-5)).IsZero())
	assert.Equal(t, "5.00", Clamp(decimal.NewFromInt(5)).StringFixed(2))
	assert.True(t, Clamp(decimal.Zero).IsZero())
}

func TestAddDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), AddDays(start, 30))
	// 2024 is a leap year
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), AddDays(start, 60))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), AddDays(start, 90))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 0, DaysBetween(a, a.AddDate(0, 0, -3)))
	assert.Equal(t, 1, DaysBetween(a, a.AddDate(0, 0, 1)))
	assert.Equal(t, 30, DaysBetween(a, a.AddDate(0, 0, 30)))
}
