package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the coded error every engine operation returns on rejection.
// Message carries the specific failing condition; eligibility reasons and
// validation messages are part of the engine's observable contract, so they
// are surfaced verbatim to callers.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Err      error     `json:"-"`
	HTTPCode int       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is makes two AppErrors match when their codes match, so callers can test
// against the sentinel constructors with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// CodeOf extracts the error code, or CodeInternalError for plain errors.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternalError
}

func Validation(format string, args ...any) *AppError {
	return New(CodeValidationFailed, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func NotFound(what string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", what), http.StatusNotFound)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func InsufficientFunds(balance, required float64) *AppError {
	return New(CodeInsufficientFunds,
		fmt.Sprintf("balance %.2f is less than required amount %.2f", balance, required),
		http.StatusUnprocessableEntity)
}

// LedgerInvariant marks a fatal internal inconsistency: a balance that would
// go negative or a mismatched transfer pair. The whole operation aborts.
func LedgerInvariant(format string, args ...any) *AppError {
	return New(CodeLedgerInvariantViolation, fmt.Sprintf(format, args...), http.StatusInternalServerError)
}

func DuplicateActiveSubscription(subscriberID string) *AppError {
	return New(CodeDuplicateActiveSubscription,
		fmt.Sprintf("subscriber %s already has an active subscription", subscriberID),
		http.StatusConflict)
}

func NoActivePolicy(subscriberID string) *AppError {
	return New(CodeNoActivePolicy,
		fmt.Sprintf("subscriber %s has no active subscription", subscriberID),
		http.StatusNotFound)
}

func HasPendingClaims(count int) *AppError {
	return New(CodeHasPendingClaims,
		fmt.Sprintf("subscription has %d open claim(s); settle or reject them before cancelling", count),
		http.StatusConflict)
}

func HasActiveSubscriptions(count int) *AppError {
	return New(CodeHasActiveSubscriptions,
		fmt.Sprintf("policy has %d active subscription(s) and cannot be deleted", count),
		http.StatusConflict)
}

func NotEligible(reason string) *AppError {
	return New(CodeNotEligible, reason, http.StatusUnprocessableEntity)
}

func AlreadySettled(status string) *AppError {
	return New(CodeAlreadySettled,
		fmt.Sprintf("claim is already in terminal state %q", status),
		http.StatusConflict)
}

func InvalidStatus(format string, args ...any) *AppError {
	return New(CodeInvalidStatus, fmt.Sprintf(format, args...), http.StatusConflict)
}

func Database(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "storage operation failed", http.StatusInternalServerError)
}
