package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// SUBSCRIPTION (A SUBSCRIBER'S LIVE POLICY INSTANCE)
// ============================================================================

// Subscription snapshots the chosen tier's daily rate and coverage at
// subscribe time. Later edits to the catalog policy never change an
// existing subscription.
type Subscription struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	PolicyID         uuid.UUID          `json:"policy_id" db:"policy_id"`
	AgentID          string             `json:"agent_id" db:"agent_id"`
	SubscriberID     string             `json:"subscriber_id" db:"subscriber_id"`
	Tier             RateTier           `json:"tier" db:"tier"`
	PremiumPaid      float64            `json:"premium_paid" db:"premium_paid"`
	DailyRate        float64            `json:"daily_rate" db:"daily_rate"`
	CoverageAmount   float64            `json:"coverage_amount" db:"coverage_amount"`
	StartDate        int64              `json:"start_date" db:"start_date"`
	EndDate          int64              `json:"end_date" db:"end_date"`
	Status           SubscriptionStatus `json:"status" db:"status"`
	CancellationDate *int64             `json:"cancellation_date,omitempty" db:"cancellation_date"`
	RefundAmount     *float64           `json:"refund_amount,omitempty" db:"refund_amount"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
}

// IsActiveAt reports whether the subscription is active and its coverage
// window has not ended at the given instant.
func (s *Subscription) IsActiveAt(now int64) bool {
	return s.Status == SubscriptionActive && s.EndDate >= now
}
