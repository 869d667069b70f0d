package models

type PolicyType string

const (
	PolicyTypeCrop      PolicyType = "crop"
	PolicyTypeLivestock PolicyType = "livestock"
	PolicyTypeEquipment PolicyType = "equipment"
	PolicyTypeGeneral   PolicyType = "general"
)

type PolicyStatus string

const (
	PolicyActive       PolicyStatus = "active"
	PolicyInactive     PolicyStatus = "inactive"
	PolicyDiscontinued PolicyStatus = "discontinued"
)

type RateTier string

const (
	TierNormal  RateTier = "normal"
	TierPremium RateTier = "premium"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintClaimFiled ComplaintStatus = "claim_filed"
	ComplaintRejected   ComplaintStatus = "rejected"
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintRefunded   ComplaintStatus = "refunded"
)

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
	ClaimPaid     ClaimStatus = "paid"
	ClaimRefunded ClaimStatus = "refunded"
)

// IsTerminal reports whether a claim can no longer change state.
func (s ClaimStatus) IsTerminal() bool {
	switch s {
	case ClaimRejected, ClaimPaid, ClaimRefunded:
		return true
	default:
		return false
	}
}

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transfer reasons recorded on ledger transactions.
const (
	ReasonPremiumPayment  = "premium_payment"
	ReasonPolicyRefund    = "policy_refund"
	ReasonClaimPayout     = "claim_payout"
	ReasonComplaintRefund = "complaint_refund"
	ReasonAccountTopUp    = "account_topup"
)

func IsValidPolicyType(t PolicyType) bool {
	switch t {
	case PolicyTypeCrop, PolicyTypeLivestock, PolicyTypeEquipment, PolicyTypeGeneral:
		return true
	default:
		return false
	}
}

func IsValidRateTier(t RateTier) bool {
	return t == TierNormal || t == TierPremium
}

func IsValidPolicyStatus(s PolicyStatus) bool {
	switch s {
	case PolicyActive, PolicyInactive, PolicyDiscontinued:
		return true
	default:
		return false
	}
}
