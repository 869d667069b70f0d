package utils

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseUUIDParam parses a route parameter as a UUID.
func ParseUUIDParam(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ValidationError{Field: name, Message: "must be a valid UUID"}
	}
	return id, nil
}

// ParsePositiveInt parses a query value as a positive integer, falling back
// to def when the value is absent or malformed.
func ParsePositiveInt(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// ParseUnixSeconds parses a query value as a unix timestamp in seconds.
func ParseUnixSeconds(value, name string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ts < 0 {
		return 0, ValidationError{Field: name, Message: "must be a unix timestamp in seconds"}
	}
	return ts, nil
}
