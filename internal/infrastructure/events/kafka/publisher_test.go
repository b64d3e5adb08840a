package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/internal/infrastructure/events/kafka"
)

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "catalog.batch_collected" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "batch-1" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})
	publisher := kafka.NewPublisherWithProducer(producer)

	// Act
	err := publisher.Publish(context.Background(), "catalog.batch_collected", "batch-1", []byte(`{}`))

	// Assert
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestPublisher_PublishFailure(t *testing.T) {
	// Arrange
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	publisher := kafka.NewPublisherWithProducer(producer)

	// Act
	err := publisher.Publish(context.Background(), "catalog.entry_upserted", "id", []byte(`{}`))

	// Assert
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestPublisher_CancelledContext(t *testing.T) {
	// Arrange
	config := mocks.NewTestConfig()
	producer := mocks.NewSyncProducer(t, config)
	publisher := kafka.NewPublisherWithProducer(producer)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := publisher.Publish(ctx, "catalog.entry_upserted", "id", []byte(`{}`))

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, publisher.Close())
}
