package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"insurance-service/internal/models"
	"insurance-service/internal/store"

	"github.com/google/uuid"
)

// Store is an in-memory implementation of store.UnitOfWork. A single mutex
// serializes transactions, and state is snapshotted at transaction start so
// a failing fn rolls back completely. It backs the service test suites and
// local runs without Postgres.
type Store struct {
	mu sync.Mutex

	accounts      map[string]models.Account
	transactions  []models.Transaction
	policies      map[uuid.UUID]models.Policy
	subscriptions map[uuid.UUID]models.Subscription
	complaints    map[uuid.UUID]models.Complaint
	claims        map[uuid.UUID]models.Claim
}

func New() *Store {
	return &Store{
		accounts:      make(map[string]models.Account),
		policies:      make(map[uuid.UUID]models.Policy),
		subscriptions: make(map[uuid.UUID]models.Subscription),
		complaints:    make(map[uuid.UUID]models.Complaint),
		claims:        make(map[uuid.UUID]models.Claim),
	}
}

type snapshot struct {
	accounts      map[string]models.Account
	transactions  []models.Transaction
	policies      map[uuid.UUID]models.Policy
	subscriptions map[uuid.UUID]models.Subscription
	complaints    map[uuid.UUID]models.Complaint
	claims        map[uuid.UUID]models.Claim
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		accounts:      cloneMap(s.accounts),
		transactions:  append([]models.Transaction(nil), s.transactions...),
		policies:      cloneMap(s.policies),
		subscriptions: cloneMap(s.subscriptions),
		complaints:    cloneMap(s.complaints),
		claims:        cloneMap(s.claims),
	}
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.transactions = snap.transactions
	s.policies = snap.policies
	s.subscriptions = snap.subscriptions
	s.complaints = snap.complaints
	s.claims = snap.claims
}

func (s *Store) WithinTx(ctx context.Context, fn func(r store.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	r := store.Repos{
		Accounts:      &accountRepo{s: s},
		Policies:      &policyRepo{s: s},
		Subscriptions: &subscriptionRepo{s: s},
		Complaints:    &complaintRepo{s: s},
		Claims:        &claimRepo{s: s},
	}
	if err := fn(r); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ============================================================================
// ACCOUNTS
// ============================================================================

type accountRepo struct{ s *Store }

func (r *accountRepo) Get(ctx context.Context, userID string) (*models.Account, error) {
	a, ok := r.s.accounts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (r *accountRepo) GetForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	// The store-wide mutex already serializes transactions.
	return r.Get(ctx, userID)
}

func (r *accountRepo) Save(ctx context.Context, a *models.Account) error {
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	r.s.accounts[cp.UserID] = cp
	return nil
}

func (r *accountRepo) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	cp := *t
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.transactions = append(r.s.transactions, cp)
	return nil
}

func (r *accountRepo) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	// Append order is chronological; history is newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ============================================================================
// POLICIES
// ============================================================================

type policyRepo struct{ s *Store }

func (r *policyRepo) Create(ctx context.Context, p *models.Policy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	r.s.policies[p.ID] = *p
	return nil
}

func (r *policyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	p, ok := r.s.policies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *policyRepo) ListByAgent(ctx context.Context, agentID string) ([]models.Policy, error) {
	var out []models.Policy
	for _, p := range r.s.policies {
		if p.AgentID == agentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *policyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PolicyStatus) error {
	p, ok := r.s.policies[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.s.policies[id] = p
	return nil
}

func (r *policyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.policies[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.policies, id)
	return nil
}

// ============================================================================
// SUBSCRIPTIONS
// ============================================================================

type subscriptionRepo struct{ s *Store }

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = time.Now()
	r.s.subscriptions[sub.ID] = *sub
	return nil
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := sub
	return &cp, nil
}

func (r *subscriptionRepo) GetActiveBySubscriber(ctx context.Context, subscriberID string) (*models.Subscription, error) {
	for _, sub := range r.s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.Status == models.SubscriptionActive {
			cp := sub
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	if _, ok := r.s.subscriptions[sub.ID]; !ok {
		return store.ErrNotFound
	}
	sub.UpdatedAt = time.Now()
	r.s.subscriptions[sub.ID] = *sub
	return nil
}

func (r *subscriptionRepo) CountActiveByPolicy(ctx context.Context, policyID uuid.UUID) (int, error) {
	count := 0
	for _, sub := range r.s.subscriptions {
		if sub.PolicyID == policyID && sub.Status == models.SubscriptionActive {
			count++
		}
	}
	return count, nil
}

func (r *subscriptionRepo) ListDueForExpiry(ctx context.Context, now int64, limit int) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.Status == models.SubscriptionActive && sub.EndDate < now {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate < out[j].EndDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ============================================================================
// COMPLAINTS
// ============================================================================

type complaintRepo struct{ s *Store }

func (r *complaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	r.s.complaints[c.ID] = *c
	return nil
}

func (r *complaintRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	c, ok := r.s.complaints[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *complaintRepo) Update(ctx context.Context, c *models.Complaint) error {
	if _, ok := r.s.complaints[c.ID]; !ok {
		return store.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.s.complaints[c.ID] = *c
	return nil
}

func (r *complaintRepo) ListBySeller(ctx context.Context, sellerID string) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range r.s.complaints {
		if c.SellerID == sellerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *complaintRepo) ListByBuyer(ctx context.Context, buyerID string) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range r.s.complaints {
		if c.BuyerID == buyerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ============================================================================
// CLAIMS
// ============================================================================

type claimRepo struct{ s *Store }

func (r *claimRepo) Create(ctx context.Context, c *models.Claim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	r.s.claims[c.ID] = *c
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	c, ok := r.s.claims[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *claimRepo) Update(ctx context.Context, c *models.Claim) error {
	if _, ok := r.s.claims[c.ID]; !ok {
		return store.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.s.claims[c.ID] = *c
	return nil
}

func (r *claimRepo) ListByAgent(ctx context.Context, agentID string) ([]models.Claim, error) {
	var out []models.Claim
	for _, c := range r.s.claims {
		if c.AgentID == agentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *claimRepo) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.Claim, error) {
	var out []models.Claim
	for _, c := range r.s.claims {
		if c.SubscriptionID == subscriptionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *claimRepo) CountOpenBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int, error) {
	count := 0
	for _, c := range r.s.claims {
		if c.SubscriptionID != subscriptionID {
			continue
		}
		if c.Status == models.ClaimPending || c.Status == models.ClaimApproved {
			count++
		}
	}
	return count, nil
}

var _ store.UnitOfWork = (*Store)(nil)
