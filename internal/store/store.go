package store

import (
	"context"
	"errors"

	"insurance-service/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a row does not exist. The
// service layer translates it into the coded NOT_FOUND error.
var ErrNotFound = errors.New("record not found")

type AccountRepository interface {
	// Get returns the account or ErrNotFound.
	Get(ctx context.Context, userID string) (*models.Account, error)
	// GetForUpdate locks the account row for the duration of the enclosing
	// transaction. Returns ErrNotFound when the account does not exist.
	GetForUpdate(ctx context.Context, userID string) (*models.Account, error)
	// Save inserts or updates the account's balance.
	Save(ctx context.Context, a *models.Account) error
	// AppendTransaction records an immutable ledger entry.
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	// ListTransactions returns the account's history, newest first.
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

type PolicyRepository interface {
	Create(ctx context.Context, p *models.Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	ListByAgent(ctx context.Context, agentID string) ([]models.Policy, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PolicyStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	// GetActiveBySubscriber returns the subscriber's single active
	// subscription, or ErrNotFound when there is none.
	GetActiveBySubscriber(ctx context.Context, subscriberID string) (*models.Subscription, error)
	Update(ctx context.Context, s *models.Subscription) error
	CountActiveByPolicy(ctx context.Context, policyID uuid.UUID) (int, error)
	// ListDueForExpiry returns active subscriptions whose end date has
	// passed, oldest first, capped at limit.
	ListDueForExpiry(ctx context.Context, now int64, limit int) ([]models.Subscription, error)
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	Update(ctx context.Context, c *models.Complaint) error
	ListBySeller(ctx context.Context, sellerID string) ([]models.Complaint, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Complaint, error)
}

type ClaimRepository interface {
	Create(ctx context.Context, c *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	Update(ctx context.Context, c *models.Claim) error
	ListByAgent(ctx context.Context, agentID string) ([]models.Claim, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.Claim, error)
	// CountOpenBySubscription counts claims in pending or approved state.
	CountOpenBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int, error)
}

// Repos bundles the repositories bound to one transaction scope.
type Repos struct {
	Accounts      AccountRepository
	Policies      PolicyRepository
	Subscriptions SubscriptionRepository
	Complaints    ComplaintRepository
	Claims        ClaimRepository
}

// UnitOfWork runs fn inside a single storage transaction. Everything fn
// does through the passed Repos commits or rolls back as one unit; this is
// the atomicity boundary for eligibility re-check + ledger mutation + state
// transition.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
