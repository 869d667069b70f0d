package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func trimAndValidateString(str string, fieldName string, minLen, maxLen int) error {
	trimmed := strings.TrimSpace(str)
	if len(trimmed) < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if len(trimmed) > maxLen {
		return fmt.Errorf("%s must be %d characters or less", fieldName, maxLen)
	}
	return nil
}

type CreatePolicyRequest struct {
	Name              string     `json:"name" validate:"required,min=1,max=200"`
	Type              PolicyType `json:"type" validate:"required"`
	NormalDailyRate   float64    `json:"normal_daily_rate" validate:"required,gt=0"`
	NormalCoverage    float64    `json:"normal_coverage" validate:"required,gt=0"`
	PremiumDailyRate  float64    `json:"premium_daily_rate" validate:"required,gt=0"`
	PremiumCoverage   float64    `json:"premium_coverage" validate:"required,gt=0"`
	MinDurationDays   int        `json:"min_duration_days" validate:"required,min=1"`
	MaxDurationMonths int        `json:"max_duration_months" validate:"required,min=1,max=24"`
}

func (r CreatePolicyRequest) Validate() error {
	if err := trimAndValidateString(r.Name, "name", 1, 200); err != nil {
		return err
	}
	if !IsValidPolicyType(r.Type) {
		return fmt.Errorf("invalid policy type %q", r.Type)
	}
	if r.NormalDailyRate <= 0 {
		return errors.New("normal_daily_rate must be greater than 0")
	}
	if r.PremiumDailyRate <= r.NormalDailyRate {
		return errors.New("premium_daily_rate must be greater than normal_daily_rate")
	}
	if r.NormalCoverage <= 0 {
		return errors.New("normal_coverage must be greater than 0")
	}
	if r.PremiumCoverage < r.NormalCoverage {
		return errors.New("premium_coverage must be at least normal_coverage")
	}
	if r.MinDurationDays < 1 {
		return errors.New("min_duration_days must be at least 1")
	}
	if r.MaxDurationMonths < 1 || r.MaxDurationMonths > 24 {
		return errors.New("max_duration_months must be between 1 and 24")
	}
	return nil
}

type SubscribeRequest struct {
	AgentID   string    `json:"agent_id" validate:"required"`
	PolicyID  uuid.UUID `json:"policy_id" validate:"required"`
	Tier      RateTier  `json:"tier" validate:"required"`
	StartDate int64     `json:"start_date" validate:"required"`
	EndDate   int64     `json:"end_date" validate:"required"`
}

func (r SubscribeRequest) Validate() error {
	if strings.TrimSpace(r.AgentID) == "" {
		return errors.New("agent_id is required")
	}
	if r.PolicyID == uuid.Nil {
		return errors.New("policy_id is required")
	}
	if !IsValidRateTier(r.Tier) {
		return fmt.Errorf("invalid tier %q", r.Tier)
	}
	if r.StartDate <= 0 || r.EndDate <= 0 {
		return errors.New("start_date and end_date must be unix timestamps")
	}
	return nil
}

type FileComplaintRequest struct {
	OrderRef      string  `json:"order_ref" validate:"required"`
	SellerID      string  `json:"seller_id" validate:"required"`
	BuyerID       string  `json:"buyer_id" validate:"required"`
	ProductName   string  `json:"product_name" validate:"required,max=200"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Quantity      int     `json:"quantity" validate:"required,min=1"`
	DispatchDate  int64   `json:"dispatch_date" validate:"required"`
	ComplaintDate int64   `json:"complaint_date,omitempty"`
	Reason        string  `json:"reason" validate:"required,max=500"`
	Description   *string `json:"description,omitempty"`
}

func (r FileComplaintRequest) Validate() error {
	if strings.TrimSpace(r.OrderRef) == "" {
		return errors.New("order_ref is required")
	}
	if strings.TrimSpace(r.SellerID) == "" || strings.TrimSpace(r.BuyerID) == "" {
		return errors.New("seller_id and buyer_id are required")
	}
	if err := trimAndValidateString(r.ProductName, "product_name", 1, 200); err != nil {
		return err
	}
	if r.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if r.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if r.DispatchDate <= 0 {
		return errors.New("dispatch_date must be a unix timestamp")
	}
	if r.ComplaintDate != 0 && r.ComplaintDate < r.DispatchDate {
		return errors.New("complaint_date cannot be before dispatch_date")
	}
	if err := trimAndValidateString(r.Reason, "reason", 1, 500); err != nil {
		return err
	}
	return nil
}

// SettleAction selects how an eligible claim is settled.
type SettleAction string

const (
	SettlePay    SettleAction = "pay"
	SettleRefund SettleAction = "refund"
)

type SettleClaimRequest struct {
	Action SettleAction `json:"action" validate:"required"`
}

func (r SettleClaimRequest) Validate() error {
	if r.Action != SettlePay && r.Action != SettleRefund {
		return fmt.Errorf("invalid settle action %q", r.Action)
	}
	return nil
}

type ReviewClaimRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=1000"`
}

type CancelComplaintRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r CancelComplaintRequest) Validate() error {
	return trimAndValidateString(r.Reason, "reason", 1, 500)
}

type CreditAccountRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason,omitempty"`
}

func (r CreditAccountRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	return nil
}

// RefundResult reports the outcome of a subscription cancellation.
type RefundResult struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	TotalDays      int       `json:"total_days"`
	UsedDays       int       `json:"used_days"`
	RemainingDays  int       `json:"remaining_days"`
	RefundAmount   float64   `json:"refund_amount"`
}

// EligibilityResult is the observable outcome of a complaint-to-claim check.
// Reason names the first failing condition, checked in the order
// policy -> amount -> time.
type EligibilityResult struct {
	Eligible       bool   `json:"eligible"`
	IsPolicyActive bool   `json:"is_policy_active"`
	IsAmountValid  bool   `json:"is_amount_valid"`
	IsTimeValid    bool   `json:"is_time_valid"`
	Reason         string `json:"reason,omitempty"`
}
