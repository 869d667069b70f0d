package services

import (
	"context"
	"sync"
	"testing"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimFixture sets up an insured seller with a filed claim ready to settle:
// agent-1's policy, seller-1 subscribed at normal tier (coverage 1000),
// buyer-1's complaint for an order worth 500.
func claimFixture(t *testing.T) (*testEnv, *models.Claim) {
	t.Helper()
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.fund(t, "agent-1", 1000)
	env.subscribe(t, "seller-1", policy, 30)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)
	claim, err := env.claims.FileClaim(context.Background(), complaint.ID)
	require.NoError(t, err)
	return env, claim
}

func TestFileComplaint_CreatesPending(t *testing.T) {
	env := newTestEnv(t)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)

	assert.Equal(t, models.ComplaintPending, complaint.Status)
	assert.Equal(t, 500.0, complaint.OrderAmount())

	byBuyer, err := env.claims.ListComplaintsByBuyer(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.Len(t, byBuyer, 1)
	assert.Equal(t, complaint.ID, byBuyer[0].ID)
}

func TestFileComplaint_DefaultsComplaintDateToNow(t *testing.T) {
	env := newTestEnv(t)

	complaint, err := env.claims.FileComplaint(context.Background(), models.FileComplaintRequest{
		OrderRef:     "order-1001",
		SellerID:     "seller-1",
		BuyerID:      "buyer-1",
		ProductName:  "Winter Wheat",
		Price:        100,
		Quantity:     5,
		DispatchDate: env.now - 3600,
		Reason:       "goods arrived spoiled",
	})

	require.NoError(t, err)
	assert.Equal(t, env.now, complaint.ComplaintDate)
}

func TestFileComplaint_RejectsDateBeforeDispatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.claims.FileComplaint(context.Background(), models.FileComplaintRequest{
		OrderRef:      "order-1001",
		SellerID:      "seller-1",
		BuyerID:       "buyer-1",
		ProductName:   "Winter Wheat",
		Price:         100,
		Quantity:      5,
		DispatchDate:  env.now,
		ComplaintDate: env.now - 3600,
		Reason:        "goods arrived spoiled",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestFileClaim_SnapshotsSubscription(t *testing.T) {
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	sub := env.subscribe(t, "seller-1", policy, 30)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)
	claim, err := env.claims.FileClaim(context.Background(), complaint.ID)

	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, claim.Status)
	assert.Equal(t, sub.ID, claim.SubscriptionID)
	assert.Equal(t, policy.ID, claim.PolicyID)
	assert.Equal(t, "agent-1", claim.AgentID)
	assert.Equal(t, 500.0, claim.ClaimAmount)
	assert.Equal(t, 1000.0, claim.CoverageAmount)

	updated, err := env.claims.GetComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintClaimFiled, updated.Status)
}

func TestFileClaim_IneligibleLateFiling(t *testing.T) {
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.subscribe(t, "seller-1", policy, 30)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-25*3600, env.now)
	_, err := env.claims.FileClaim(context.Background(), complaint.ID)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotEligible, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "filed 25 hours after dispatch, must be within 24")

	unchanged, err := env.claims.GetComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintPending, unchanged.Status, "a rejected filing leaves the complaint open")
}

func TestFileClaim_UninsuredSeller(t *testing.T) {
	env := newTestEnv(t)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)
	_, err := env.claims.FileClaim(context.Background(), complaint.ID)

	assert.Equal(t, apperrors.CodeNotEligible, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "seller has no active insurance policy")
}

func TestFileClaim_RequiresPendingComplaint(t *testing.T) {
	env, claim := claimFixture(t)

	_, err := env.claims.FileClaim(context.Background(), claim.ComplaintID)

	assert.Equal(t, apperrors.CodeInvalidStatus, apperrors.CodeOf(err))
}

func TestCheckComplaintEligibility_Preview(t *testing.T) {
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.subscribe(t, "seller-1", policy, 30)

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 600, 2, env.now-3600, env.now)

	result, err := env.claims.CheckComplaintEligibility(context.Background(), complaint.ID)

	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, "order amount 1200.00 exceeds coverage 1000.00", result.Reason)

	// Preview creates nothing.
	unchanged, err := env.claims.GetComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintPending, unchanged.Status)
}

func TestSettleClaim_PayMovesFundsOnce(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()
	agentBefore := env.balance(t, "agent-1")

	payout, err := env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)

	require.NoError(t, err)
	assert.Equal(t, -500.0, payout.Amount)
	assert.Equal(t, models.ReasonClaimPayout, payout.Reason)

	assert.Equal(t, agentBefore-500, env.balance(t, "agent-1"))
	assert.Equal(t, 500.0, env.balance(t, "buyer-1"))

	settled, err := env.claims.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPaid, settled.Status)
	require.NotNil(t, settled.SettledAt)

	complaint, err := env.claims.GetComplaint(ctx, claim.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintResolved, complaint.Status)
}

func TestSettleClaim_RefundMarksRefunded(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()

	payout, err := env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettleRefund)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonComplaintRefund, payout.Reason)
	assert.Equal(t, 500.0, env.balance(t, "buyer-1"))

	settled, err := env.claims.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRefunded, settled.Status)

	complaint, err := env.claims.GetComplaint(ctx, claim.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRefunded, complaint.Status)
}

func TestSettleClaim_SecondSettleRejected(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()

	_, err := env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)
	require.NoError(t, err)

	_, err = env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)
	assert.Equal(t, apperrors.CodeAlreadySettled, apperrors.CodeOf(err))

	history, err := env.ledger.GetHistory(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, history, 1, "the payout is recorded exactly once")
}

func TestSettleClaim_InsufficientAgentFunds(t *testing.T) {
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.subscribe(t, "seller-1", policy, 30) // agent now holds 150, claim needs 500

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)
	claim, err := env.claims.FileClaim(context.Background(), complaint.ID)
	require.NoError(t, err)

	_, err = env.claims.SettleClaim(context.Background(), claim.ID, "agent-1", models.SettlePay)

	assert.Equal(t, apperrors.CodeInsufficientFunds, apperrors.CodeOf(err))

	open, err := env.claims.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, open.Status, "the failed settlement rolls back the status flip")
	assert.Equal(t, 0.0, env.balance(t, "buyer-1"))
}

func TestSettleClaim_WrongAgent(t *testing.T) {
	env, claim := claimFixture(t)

	_, err := env.claims.SettleClaim(context.Background(), claim.ID, "agent-2", models.SettlePay)

	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestSettleClaim_UnknownClaim(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.claims.SettleClaim(context.Background(), uuid.New(), "agent-1", models.SettlePay)

	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestApproveThenSettle(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()

	approved, err := env.claims.ApproveClaim(ctx, claim.ID, "agent-1", "verified spoilage photos")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "agent-1", *approved.ReviewedBy)

	_, err = env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)
	require.NoError(t, err)
}

func TestRejectClaim_IsTerminal(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()

	rejected, err := env.claims.RejectClaim(ctx, claim.ID, "agent-1", "order was delivered intact")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, rejected.Status)

	_, err = env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)
	assert.Equal(t, apperrors.CodeAlreadySettled, apperrors.CodeOf(err))

	complaint, err := env.claims.GetComplaint(ctx, claim.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, complaint.Status)
	assert.Equal(t, 0.0, env.balance(t, "buyer-1"), "rejection moves no money")
}

func TestCancelComplaint_PendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	complaint := env.fileComplaint(t, "seller-1", "buyer-1", 100, 5, env.now-3600, env.now)

	err := env.claims.CancelComplaint(ctx, complaint.ID, "stranger", "not mine")
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	err = env.claims.CancelComplaint(ctx, complaint.ID, "buyer-1", "resolved offline")
	require.NoError(t, err)

	cancelled, err := env.claims.GetComplaint(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "resolved offline", *cancelled.CancellationReason)

	err = env.claims.CancelComplaint(ctx, complaint.ID, "buyer-1", "again")
	assert.Equal(t, apperrors.CodeInvalidStatus, apperrors.CodeOf(err))
}

func TestCancelComplaint_BlockedAfterClaimFiled(t *testing.T) {
	env, claim := claimFixture(t)

	err := env.claims.CancelComplaint(context.Background(), claim.ComplaintID, "buyer-1", "changed my mind")

	assert.Equal(t, apperrors.CodeInvalidStatus, apperrors.CodeOf(err))
}

func TestConcurrentSettle_ExactlyOnePayout(t *testing.T) {
	env, claim := claimFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.claims.SettleClaim(ctx, claim.ID, "agent-1", models.SettlePay)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, apperrors.CodeAlreadySettled, apperrors.CodeOf(err))
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 500.0, env.balance(t, "buyer-1"), "the buyer is paid exactly once")
}
