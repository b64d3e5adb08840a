package nats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

type MockJetStream struct {
	mock.Mock
}

func (m *MockJetStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, subject, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jetstream.PubAck), args.Error(1)
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	js := new(MockJetStream)
	js.On("Publish", mock.Anything, "catalog.entry_upserted", []byte(`{"id":"1"}`)).
		Return(&jetstream.PubAck{Stream: "CATALOG", Sequence: 7}, nil)
	publisher := nats.NewPublisher(js, nil, logger.NewNoop())

	// Act
	err := publisher.Publish(context.Background(), "catalog.entry_upserted", "abc", []byte(`{"id":"1"}`))

	// Assert
	require.NoError(t, err)
	js.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	// Arrange
	js := new(MockJetStream)
	js.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("no responders"))
	publisher := nats.NewPublisher(js, nil, logger.NewNoop())

	// Act
	err := publisher.Publish(context.Background(), "catalog.batch_enriched", "b1", []byte("{}"))

	// Assert
	assert.ErrorContains(t, err, "no responders")
}

func TestPublisher_CloseRunsCleanup(t *testing.T) {
	// Arrange
	closed := false
	publisher := nats.NewPublisher(new(MockJetStream), func() { closed = true }, logger.NewNoop())

	// Act
	err := publisher.Close()

	// Assert
	require.NoError(t, err)
	assert.True(t, closed)
}
