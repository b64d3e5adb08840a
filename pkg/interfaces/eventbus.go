package interfaces

import (
	"context"
)

// Event is a fact published by the catalog once it has happened.
type Event interface {
	// EventType returns the routing key, e.g. "catalog.batch_collected"
	EventType() string

	// Timestamp returns the unix time the event occurred
	Timestamp() int64

	// AggregateID returns the id of the entity the event is about
	AggregateID() string
}

// EventHandler reacts to one event type.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	EventType() string
}

// EventBus fans events out to subscribed handlers.
type EventBus interface {
	Publish(ctx context.Context, event Event) error

	// PublishAsync dispatches in the background; Stop waits for in-flight dispatches
	PublishAsync(ctx context.Context, event Event)

	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error
	Start(ctx context.Context) error
	Stop() error
}
