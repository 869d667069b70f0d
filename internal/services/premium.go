package services

import (
	"math"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// round2 rounds a monetary amount to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ceilDays converts a positive span in seconds to whole days, rounding up.
func ceilDays(seconds int64) int {
	if seconds <= 0 {
		return 0
	}
	return int((seconds + secondsPerDay - 1) / secondsPerDay)
}

// ComputePremium prices a coverage window at the given daily rate. Billing
// starts at the later of the chosen start date and now, so a subscriber
// cannot backdate free coverage. Returns the billable day count and the
// premium.
func ComputePremium(startDate, endDate, now int64, dailyRate float64) (int, float64, error) {
	effectiveStart := startDate
	if now > effectiveStart {
		effectiveStart = now
	}

	days := ceilDays(endDate - effectiveStart)
	if days <= 0 {
		return 0, 0, apperrors.Validation("coverage window has no billable days")
	}

	return days, round2(float64(days) * dailyRate), nil
}

// ProrateRefund computes the refund for cancelling a subscription at the
// given instant: the unused whole days at the effective daily rate
// (premium / total days). Cancelling at or after the end date yields a
// zero refund.
func ProrateRefund(startDate, endDate, now int64, premium float64) models.RefundResult {
	totalDays := ceilDays(endDate - startDate)
	if totalDays <= 0 {
		return models.RefundResult{}
	}

	usedDays := ceilDays(now - startDate)
	if usedDays < 0 {
		usedDays = 0
	}

	remainingDays := totalDays - usedDays
	if remainingDays < 0 {
		remainingDays = 0
	}

	dailyRate := premium / float64(totalDays)
	return models.RefundResult{
		TotalDays:     totalDays,
		UsedDays:      usedDays,
		RemainingDays: remainingDays,
		RefundAmount:  round2(float64(remainingDays) * dailyRate),
	}
}
