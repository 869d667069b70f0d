package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

func TestComputePremium_ThirtyDayTerm(t *testing.T) {
	days, premium, err := ComputePremium(t0, t0+30*day, t0, 5)

	require.NoError(t, err)
	assert.Equal(t, 30, days)
	assert.Equal(t, 150.0, premium, "30 days at 5/day should cost 150")
}

func TestComputePremium_BackdatedStartBillsFromNow(t *testing.T) {
	// A start date 10 days in the past must not produce free coverage:
	// billing starts at now.
	days, premium, err := ComputePremium(t0-10*day, t0+20*day, t0, 5)

	require.NoError(t, err)
	assert.Equal(t, 20, days)
	assert.Equal(t, 100.0, premium)
}

func TestComputePremium_FutureStartBillsFullWindow(t *testing.T) {
	days, premium, err := ComputePremium(t0+5*day, t0+35*day, t0, 5)

	require.NoError(t, err)
	assert.Equal(t, 30, days)
	assert.Equal(t, 150.0, premium)
}

func TestComputePremium_PartialDayRoundsUp(t *testing.T) {
	days, premium, err := ComputePremium(t0, t0+36*3600, t0, 5)

	require.NoError(t, err)
	assert.Equal(t, 2, days, "36 hours bills as 2 whole days")
	assert.Equal(t, 10.0, premium)
}

func TestComputePremium_NoBillableDays(t *testing.T) {
	_, _, err := ComputePremium(t0-30*day, t0-day, t0, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no billable days")
}

func TestProrateRefund_TenOfThirtyDaysUsed(t *testing.T) {
	refund := ProrateRefund(t0, t0+30*day, t0+10*day, 150)

	assert.Equal(t, 30, refund.TotalDays)
	assert.Equal(t, 10, refund.UsedDays)
	assert.Equal(t, 20, refund.RemainingDays)
	assert.Equal(t, 100.0, refund.RefundAmount, "20 unused days at 5/day")
}

func TestProrateRefund_ImmediateCancelRefundsFullPremium(t *testing.T) {
	refund := ProrateRefund(t0, t0+30*day, t0, 150)

	assert.Equal(t, 0, refund.UsedDays)
	assert.Equal(t, 30, refund.RemainingDays)
	assert.Equal(t, 150.0, refund.RefundAmount)
}

func TestProrateRefund_AfterTermEndsIsZero(t *testing.T) {
	refund := ProrateRefund(t0, t0+30*day, t0+31*day, 150)

	assert.Equal(t, 0, refund.RemainingDays)
	assert.Equal(t, 0.0, refund.RefundAmount)
}

func TestProrateRefund_PartialUsedDayCountsAsUsed(t *testing.T) {
	// Cancelling half way through day 10 burns the whole day.
	refund := ProrateRefund(t0, t0+30*day, t0+9*day+3600, 150)

	assert.Equal(t, 10, refund.UsedDays)
	assert.Equal(t, 20, refund.RemainingDays)
	assert.Equal(t, 100.0, refund.RefundAmount)
}

func TestProrateRefund_RoundsToCents(t *testing.T) {
	// 23 unused days at 100/30 per day is 76.666..., which must settle to
	// a representable amount.
	refund := ProrateRefund(t0, t0+30*day, t0+7*day, 100)

	assert.Equal(t, 23, refund.RemainingDays)
	assert.Equal(t, 76.67, refund.RefundAmount)
}
