package services

import (
	"fmt"
	"math"

	"insurance-service/internal/models"
)

// complaintWindowSeconds is the strict filing window: a complaint is valid
// when it was filed within 24 hours of dispatch, compared on instants (a
// complaint at 23h59m qualifies, one at 24h01m does not).
const complaintWindowSeconds = 24 * 60 * 60

// CheckEligibility decides whether a complaint can become a claim under the
// given subscription, evaluated at the given instant. It is pure and
// deterministic: the same inputs always yield the same result. Conditions
// are checked in the order policy -> amount -> time, and Reason carries the
// first failing condition with its concrete numbers.
func CheckEligibility(complaint *models.Complaint, sub *models.Subscription, now int64) models.EligibilityResult {
	var result models.EligibilityResult

	// Re-verified at evaluation time: a subscription that was active when
	// the complaint was filed may have expired or been cancelled since.
	result.IsPolicyActive = sub != nil && sub.IsActiveAt(now)

	orderAmount := complaint.OrderAmount()
	if sub != nil {
		result.IsAmountValid = orderAmount <= sub.CoverageAmount
	}

	elapsed := complaint.ComplaintDate - complaint.DispatchDate
	result.IsTimeValid = elapsed >= 0 && elapsed <= complaintWindowSeconds

	result.Eligible = result.IsPolicyActive && result.IsAmountValid && result.IsTimeValid
	if result.Eligible {
		return result
	}

	switch {
	case !result.IsPolicyActive:
		result.Reason = "seller has no active insurance policy at evaluation time"
	case !result.IsAmountValid:
		result.Reason = fmt.Sprintf("order amount %.2f exceeds coverage %.2f", orderAmount, sub.CoverageAmount)
	case elapsed < 0:
		result.Reason = "complaint date precedes the order's dispatch date"
	default:
		hours := int(math.Ceil(float64(elapsed) / 3600))
		result.Reason = fmt.Sprintf("filed %d hours after dispatch, must be within 24", hours)
	}
	return result
}
