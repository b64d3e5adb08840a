package events

import (
	"time"
)

// BaseEvent carries the envelope fields shared by every catalog event.
// Concrete events embed it.
type BaseEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	AggID      string    `json:"aggregate_id"`
}

// NewBaseEvent stamps an event of the given type about aggregateID.
func NewBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		AggID:      aggregateID,
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Timestamp() int64 {
	return e.OccurredAt.UnixNano()
}

func (e BaseEvent) AggregateID() string {
	return e.AggID
}
