package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// POLICY CATALOG (AGENT-AUTHORED PRODUCT TEMPLATES)
// ============================================================================

type Policy struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	AgentID           string       `json:"agent_id" db:"agent_id"`
	Name              string       `json:"name" db:"name"`
	Type              PolicyType   `json:"type" db:"type"`
	NormalDailyRate   float64      `json:"normal_daily_rate" db:"normal_daily_rate"`
	NormalCoverage    float64      `json:"normal_coverage" db:"normal_coverage"`
	PremiumDailyRate  float64      `json:"premium_daily_rate" db:"premium_daily_rate"`
	PremiumCoverage   float64      `json:"premium_coverage" db:"premium_coverage"`
	MinDurationDays   int          `json:"min_duration_days" db:"min_duration_days"`
	MaxDurationMonths int          `json:"max_duration_months" db:"max_duration_months"`
	Status            PolicyStatus `json:"status" db:"status"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// DailyRate returns the daily rate for the given tier.
func (p *Policy) DailyRate(tier RateTier) float64 {
	if tier == TierPremium {
		return p.PremiumDailyRate
	}
	return p.NormalDailyRate
}

// Coverage returns the maximum coverage amount for the given tier.
func (p *Policy) Coverage(tier RateTier) float64 {
	if tier == TierPremium {
		return p.PremiumCoverage
	}
	return p.NormalCoverage
}
