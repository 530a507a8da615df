// Package telemetry defines the operational event type flowing through the
// event pipeline (Kafka -> worker -> Loki, and OTel logs).
package telemetry

import (
	"context"
	"time"
)

// Event is a single operational event: an auth action, a work-order mutation,
// or a notification being produced. Metadata is free-form JSON.
type Event struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Source    string    `json:"source,omitempty"`
	Metadata  []byte    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent returns an Event stamped with the current time.
func NewEvent(eventType, userID, resource, source string) *Event {
	return &Event{
		EventType: eventType,
		UserID:    userID,
		Resource:  resource,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// EventEmitter emits operational events (e.g. to Kafka or OTel Logs).
// Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
