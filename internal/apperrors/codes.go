package apperrors

// ErrorCode identifies a failure class across the engine.
type ErrorCode string

const (
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeForbidden        ErrorCode = "FORBIDDEN"

	// Ledger
	CodeInsufficientFunds        ErrorCode = "INSUFFICIENT_FUNDS"
	CodeLedgerInvariantViolation ErrorCode = "LEDGER_INVARIANT_VIOLATION"

	// Subscription lifecycle
	CodeDuplicateActiveSubscription ErrorCode = "DUPLICATE_ACTIVE_SUBSCRIPTION"
	CodeNoActivePolicy              ErrorCode = "NO_ACTIVE_POLICY"
	CodeHasPendingClaims            ErrorCode = "HAS_PENDING_CLAIMS"
	CodeHasActiveSubscriptions      ErrorCode = "HAS_ACTIVE_SUBSCRIPTIONS"

	// Claims
	CodeNotEligible    ErrorCode = "NOT_ELIGIBLE"
	CodeAlreadySettled ErrorCode = "ALREADY_SETTLED"
	CodeInvalidStatus  ErrorCode = "INVALID_STATUS"
)
