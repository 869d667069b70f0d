package services

import (
	"testing"

	"insurance-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testComplaint(price float64, qty int, dispatchDate, complaintDate int64) *models.Complaint {
	return &models.Complaint{
		ID:            uuid.New(),
		OrderRef:      "order-1001",
		SellerID:      "seller-1",
		BuyerID:       "buyer-1",
		ProductName:   "Winter Wheat",
		Price:         price,
		Quantity:      qty,
		DispatchDate:  dispatchDate,
		ComplaintDate: complaintDate,
		Status:        models.ComplaintPending,
	}
}

func testSubscription(coverage float64, startDate, endDate int64) *models.Subscription {
	return &models.Subscription{
		ID:             uuid.New(),
		PolicyID:       uuid.New(),
		AgentID:        "agent-1",
		SubscriberID:   "seller-1",
		Tier:           models.TierNormal,
		CoverageAmount: coverage,
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         models.SubscriptionActive,
	}
}

func TestCheckEligibility_AllConditionsMet(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(100, 5, t0-23*3600, t0) // filed 23h after dispatch

	result := CheckEligibility(complaint, sub, t0)

	assert.True(t, result.Eligible)
	assert.True(t, result.IsPolicyActive)
	assert.True(t, result.IsAmountValid)
	assert.True(t, result.IsTimeValid)
	assert.Empty(t, result.Reason)
}

func TestCheckEligibility_LateFiling(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(100, 5, t0-25*3600, t0) // filed 25h after dispatch

	result := CheckEligibility(complaint, sub, t0)

	assert.False(t, result.Eligible)
	assert.True(t, result.IsPolicyActive)
	assert.True(t, result.IsAmountValid)
	assert.False(t, result.IsTimeValid)
	assert.Equal(t, "filed 25 hours after dispatch, must be within 24", result.Reason)
}

func TestCheckEligibility_WindowBoundary(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)

	exactly24h := testComplaint(100, 5, t0-24*3600, t0)
	assert.True(t, CheckEligibility(exactly24h, sub, t0).Eligible, "exactly 24 hours is inside the window")

	oneSecondLate := testComplaint(100, 5, t0-24*3600-1, t0)
	result := CheckEligibility(oneSecondLate, sub, t0)
	assert.False(t, result.Eligible)
	assert.Equal(t, "filed 25 hours after dispatch, must be within 24", result.Reason)
}

func TestCheckEligibility_AmountExceedsCoverage(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(600, 2, t0-3600, t0) // order amount 1200

	result := CheckEligibility(complaint, sub, t0)

	assert.False(t, result.Eligible)
	assert.True(t, result.IsPolicyActive)
	assert.False(t, result.IsAmountValid)
	assert.True(t, result.IsTimeValid)
	assert.Equal(t, "order amount 1200.00 exceeds coverage 1000.00", result.Reason)
}

func TestCheckEligibility_AmountAtCoverageIsValid(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(500, 2, t0-3600, t0) // order amount exactly 1000

	assert.True(t, CheckEligibility(complaint, sub, t0).Eligible)
}

func TestCheckEligibility_NoSubscription(t *testing.T) {
	complaint := testComplaint(100, 5, t0-3600, t0)

	result := CheckEligibility(complaint, nil, t0)

	assert.False(t, result.Eligible)
	assert.False(t, result.IsPolicyActive)
	assert.Equal(t, "seller has no active insurance policy at evaluation time", result.Reason)
}

func TestCheckEligibility_ExpiredSubscription(t *testing.T) {
	// Coverage that lapsed between filing and evaluation fails the policy
	// condition.
	sub := testSubscription(1000, t0-40*day, t0-day)
	complaint := testComplaint(100, 5, t0-3600, t0)

	result := CheckEligibility(complaint, sub, t0)

	assert.False(t, result.Eligible)
	assert.False(t, result.IsPolicyActive)
	assert.Equal(t, "seller has no active insurance policy at evaluation time", result.Reason)
}

func TestCheckEligibility_ReasonNamesFirstFailure(t *testing.T) {
	// All three conditions fail: the policy condition is reported because
	// checks run policy -> amount -> time.
	sub := testSubscription(1000, t0-40*day, t0-day)
	complaint := testComplaint(600, 2, t0-48*3600, t0)

	result := CheckEligibility(complaint, sub, t0)

	assert.False(t, result.IsPolicyActive)
	assert.False(t, result.IsAmountValid)
	assert.False(t, result.IsTimeValid)
	assert.Equal(t, "seller has no active insurance policy at evaluation time", result.Reason)
}

func TestCheckEligibility_ComplaintPredatesDispatch(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(100, 5, t0+3600, t0) // dated 1h before dispatch

	result := CheckEligibility(complaint, sub, t0)

	assert.False(t, result.Eligible)
	assert.False(t, result.IsTimeValid)
	assert.Equal(t, "complaint date precedes the order's dispatch date", result.Reason)
}

func TestCheckEligibility_Deterministic(t *testing.T) {
	sub := testSubscription(1000, t0-5*day, t0+25*day)
	complaint := testComplaint(600, 2, t0-25*3600, t0)

	first := CheckEligibility(complaint, sub, t0)
	for range 5 {
		assert.Equal(t, first, CheckEligibility(complaint, sub, t0))
	}
}
