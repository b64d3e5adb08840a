package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const publishTimeout = 5 * time.Second

// JetStreamPublisher is the slice of jetstream.JetStream the publisher needs.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes forwarded events to JetStream.
type Publisher struct {
	js      JetStreamPublisher
	cleanup func()
	logger  interfaces.Logger
}

// NewPublisher creates a publisher. cleanup, when set, runs on Close.
func NewPublisher(js JetStreamPublisher, cleanup func(), logger interfaces.Logger) *Publisher {
	return &Publisher{
		js:      js,
		cleanup: cleanup,
		logger:  logger.WithFields(interfaces.String("component", "nats-publisher")),
	}
}

// Publish sends data with a fresh message id for JetStream deduplication.
func (p *Publisher) Publish(ctx context.Context, subject, key string, data []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ack, err := p.js.Publish(pubCtx, subject, data, jetstream.WithMsgID(uuid.NewString()))
	if err != nil {
		p.logger.Error("Failed to publish event",
			interfaces.String("subject", subject),
			interfaces.String("key", key),
			interfaces.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		interfaces.String("subject", subject),
		interfaces.Any("sequence", ack.Sequence),
		interfaces.String("stream", ack.Stream))
	return nil
}

func (p *Publisher) Close() error {
	if p.cleanup != nil {
		p.cleanup()
	}
	return nil
}
