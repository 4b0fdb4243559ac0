package domain

import "time"

// Event types published after a successful write.
const (
	EventUserRegistered  = "user.registered"
	EventPasswordChanged = "password.changed"
	EventAlertCreated    = "alert.created"
	EventAlertDeleted    = "alert.deleted"
)

// Event is a fact about a committed change, keyed by the aggregate it concerns.
type Event struct {
	Type        string         `json:"type"`
	AggregateID string         `json:"aggregate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(eventType, aggregateID string, data map[string]any) Event {
	return Event{
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}
