package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// Broker is the underlying message broker.
type Broker interface {
	Publish(ctx context.Context, subject, key string, data []byte) error
	Close() error
}

// IntegrationPublisher is an event bus handler that forwards one event type
// to a broker.
type IntegrationPublisher struct {
	eventType string
	prefix    string
	broker    Broker
	logger    interfaces.Logger
}

var _ interfaces.EventHandler = (*IntegrationPublisher)(nil)

// NewIntegrationPublisher creates a forwarder for eventType.
func NewIntegrationPublisher(eventType, prefix string, broker Broker, logger interfaces.Logger) *IntegrationPublisher {
	return &IntegrationPublisher{
		eventType: eventType,
		prefix:    prefix,
		broker:    broker,
		logger:    logger,
	}
}

func (p *IntegrationPublisher) EventType() string {
	return p.eventType
}

func (p *IntegrationPublisher) Handle(ctx context.Context, event interfaces.Event) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal integration event: %w", err)
	}

	subject := SubjectFor(p.prefix, event.EventType())
	if err := p.broker.Publish(ctx, subject, event.AggregateID(), data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	p.logger.Debug("Integration event forwarded",
		interfaces.String("event_type", event.EventType()),
		interfaces.String("subject", subject))
	return nil
}

// RegisterForwarders subscribes one IntegrationPublisher per event type on bus.
func RegisterForwarders(bus interfaces.EventBus, broker Broker, prefix string, logger interfaces.Logger, eventTypes ...string) error {
	for _, t := range eventTypes {
		if err := bus.Subscribe(t, NewIntegrationPublisher(t, prefix, broker, logger)); err != nil {
			return fmt.Errorf("subscribe forwarder for %s: %w", t, err)
		}
	}
	return nil
}
