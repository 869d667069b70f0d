package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"insurance-service/internal/models"
	"insurance-service/internal/store/memory"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const day = int64(secondsPerDay)

// testEnv wires the full service stack over the in-memory store with a
// controllable clock. No Redis and no broker: caching and events are
// best-effort and the services run without them.
type testEnv struct {
	store   *memory.Store
	ledger  *LedgerService
	catalog *PolicyCatalogService
	subs    *SubscriptionService
	claims  *ClaimsService
	now     int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: memory.New(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix(),
	}
	clock := func() int64 { return env.now }

	env.ledger = NewLedgerService(env.store)
	env.catalog = NewPolicyCatalogService(env.store, nil)
	env.subs = NewSubscriptionService(env.store, nil, nil).WithClock(clock)
	env.claims = NewClaimsService(env.store, nil).WithClock(clock)
	return env
}

// recordingPublisher captures published event types in order, for
// asserting which lifecycle transitions reached the notification queue.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (e *testEnv) advance(d time.Duration) {
	e.now += int64(d.Seconds())
}

func (e *testEnv) fund(t *testing.T, userID string, amount float64) {
	t.Helper()
	_, err := e.ledger.Credit(context.Background(), userID, amount, models.ReasonAccountTopUp)
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, userID string) float64 {
	t.Helper()
	b, err := e.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) createPolicy(t *testing.T, agentID string) *models.Policy {
	t.Helper()
	policy, err := e.catalog.CreatePolicy(context.Background(), agentID, models.CreatePolicyRequest{
		Name:              "Harvest Protection",
		Type:              models.PolicyTypeCrop,
		NormalDailyRate:   5,
		NormalCoverage:    1000,
		PremiumDailyRate:  8,
		PremiumCoverage:   2500,
		MinDurationDays:   7,
		MaxDurationMonths: 12,
	})
	require.NoError(t, err)
	return policy
}

func (e *testEnv) subscribe(t *testing.T, subscriberID string, policy *models.Policy, days int64) *models.Subscription {
	t.Helper()
	sub, err := e.subs.Subscribe(context.Background(), subscriberID, models.SubscribeRequest{
		AgentID:   policy.AgentID,
		PolicyID:  policy.ID,
		Tier:      models.TierNormal,
		StartDate: e.now,
		EndDate:   e.now + days*day,
	})
	require.NoError(t, err)
	return sub
}

func (e *testEnv) fileComplaint(t *testing.T, sellerID, buyerID string, price float64, qty int, dispatchDate, complaintDate int64) *models.Complaint {
	t.Helper()
	complaint, err := e.claims.FileComplaint(context.Background(), models.FileComplaintRequest{
		OrderRef:      "order-1001",
		SellerID:      sellerID,
		BuyerID:       buyerID,
		ProductName:   "Winter Wheat",
		Price:         price,
		Quantity:      qty,
		DispatchDate:  dispatchDate,
		ComplaintDate: complaintDate,
		Reason:        "goods arrived spoiled",
	})
	require.NoError(t, err)
	return complaint
}
