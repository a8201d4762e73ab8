// Package kafka publishes engine events to the platform's message bus.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topics the engine produces to.
const (
	TopicBookValued      = "book.valued"
	TopicAnalyticsViewed = "book.analytics_viewed"
)

// EventEnvelope is the common wrapper around every published payload.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a marshalled payload in a fresh envelope.
func NewEnvelope(eventType string, occurredAt time.Time, payload json.RawMessage) EventEnvelope {
	return EventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}
