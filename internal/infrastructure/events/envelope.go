// Package events forwards catalog events from the in-process bus to an
// external broker.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// Envelope is the wire form of a forwarded event.
type Envelope struct {
	ID          string          `json:"id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// NewEnvelope wraps event with a fresh message id.
func NewEnvelope(event interfaces.Event) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	return &Envelope{
		ID:          uuid.NewString(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  time.Unix(0, event.Timestamp()).UTC(),
		Data:        data,
	}, nil
}

// SubjectFor maps an event type onto the broker namespace. Types already
// under prefix are used as-is, so "catalog.entry_upserted" stays unchanged
// with the default "catalog" prefix.
func SubjectFor(prefix, eventType string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" || strings.HasPrefix(eventType, prefix+".") {
		return eventType
	}
	return prefix + "." + eventType
}
