package event

import "time"

// InsuranceEvent is the envelope for every message published to the
// insurance events queue. Payload carries the domain entity the event is
// about (subscription, claim).
type InsuranceEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

const InsuranceEventQueue string = "insurance_events"
