package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CLAIM (VALIDATED SETTLEMENT REQUEST DERIVED FROM A COMPLAINT)
// ============================================================================

type Claim struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	ComplaintID    uuid.UUID   `json:"complaint_id" db:"complaint_id"`
	SubscriptionID uuid.UUID   `json:"subscription_id" db:"subscription_id"`
	PolicyID       uuid.UUID   `json:"policy_id" db:"policy_id"`
	AgentID        string      `json:"agent_id" db:"agent_id"`
	SellerID       string      `json:"seller_id" db:"seller_id"`
	BuyerID        string      `json:"buyer_id" db:"buyer_id"`
	ClaimAmount    float64     `json:"claim_amount" db:"claim_amount"`
	CoverageAmount float64     `json:"coverage_amount" db:"coverage_amount"`
	Status         ClaimStatus `json:"status" db:"status"`
	AgentNotes     *string     `json:"agent_notes,omitempty" db:"agent_notes"`
	ReviewedBy     *string     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt     *int64      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	SettledAt      *int64      `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}
