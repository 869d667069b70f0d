package services

import (
	"context"
	"testing"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePolicy_DefaultsToActive(t *testing.T) {
	env := newTestEnv(t)

	policy := env.createPolicy(t, "agent-1")

	assert.Equal(t, models.PolicyActive, policy.Status)
	assert.Equal(t, "agent-1", policy.AgentID)

	fetched, err := env.catalog.GetPolicy(context.Background(), policy.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.ID, fetched.ID)
}

func TestCreatePolicy_RejectsInvertedTiers(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreatePolicy(context.Background(), "agent-1", models.CreatePolicyRequest{
		Name:              "Broken Tiers",
		Type:              models.PolicyTypeCrop,
		NormalDailyRate:   8,
		NormalCoverage:    1000,
		PremiumDailyRate:  5, // cheaper than normal
		PremiumCoverage:   2500,
		MinDurationDays:   7,
		MaxDurationMonths: 12,
	})

	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestListPoliciesByAgent(t *testing.T) {
	env := newTestEnv(t)
	env.createPolicy(t, "agent-1")
	env.createPolicy(t, "agent-1")
	env.createPolicy(t, "agent-2")

	policies, err := env.catalog.ListPoliciesByAgent(context.Background(), "agent-1")

	require.NoError(t, err)
	assert.Len(t, policies, 2)
}

func TestDeletePolicy_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	policy := env.createPolicy(t, "agent-1")

	err := env.catalog.DeletePolicy(context.Background(), policy.ID, "agent-2")

	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestDeletePolicy_BlockedByActiveSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.subscribe(t, "seller-1", policy, 30)

	err := env.catalog.DeletePolicy(ctx, policy.ID, "agent-1")
	assert.Equal(t, apperrors.CodeHasActiveSubscriptions, apperrors.CodeOf(err))

	// Once the subscription is cancelled the policy can go.
	_, err = env.subs.Cancel(ctx, "seller-1")
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeletePolicy(ctx, policy.ID, "agent-1"))

	_, err = env.catalog.GetPolicy(ctx, policy.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestUpdatePolicyStatus_StopsNewSubscriptionsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	policy := env.createPolicy(t, "agent-1")
	env.fund(t, "seller-1", 200)
	env.subscribe(t, "seller-1", policy, 30)

	require.NoError(t, env.catalog.UpdatePolicyStatus(ctx, policy.ID, "agent-1", models.PolicyDiscontinued))

	// Existing coverage keeps its snapshot and stays active.
	active, err := env.subs.GetActiveSubscription(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, active.DailyRate)

	env.fund(t, "seller-2", 200)
	_, err = env.subs.Subscribe(ctx, "seller-2", models.SubscribeRequest{
		AgentID:   policy.AgentID,
		PolicyID:  policy.ID,
		Tier:      models.TierNormal,
		StartDate: env.now,
		EndDate:   env.now + 30*day,
	})
	assert.Equal(t, apperrors.CodeInvalidStatus, apperrors.CodeOf(err))
}
