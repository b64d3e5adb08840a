package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

type countingHandler struct {
	eventType string
	calls     atomic.Int32
	err       error
}

func (h *countingHandler) Handle(ctx context.Context, event interfaces.Event) error {
	h.calls.Add(1)
	return h.err
}

func (h *countingHandler) EventType() string { return h.eventType }

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(logger.NewNoop())
	failing := &countingHandler{eventType: "catalog.test", err: errors.New("boom")}
	ok := &countingHandler{eventType: "catalog.test"}
	require.NoError(t, bus.Subscribe("catalog.test", failing))
	require.NoError(t, bus.Subscribe("catalog.test", ok))

	err := bus.Publish(context.Background(), NewBaseEvent("catalog.test", "agg-1"))

	require.NoError(t, err)
	assert.EqualValues(t, 1, failing.calls.Load())
	assert.EqualValues(t, 1, ok.calls.Load())
}

func TestInMemoryEventBus_StopWaitsForAsync(t *testing.T) {
	bus := NewInMemoryEventBus(logger.NewNoop())
	h := &countingHandler{eventType: "catalog.test"}
	require.NoError(t, bus.Subscribe("catalog.test", h))

	for i := 0; i < 5; i++ {
		bus.PublishAsync(context.Background(), NewBaseEvent("catalog.test", "agg"))
	}
	require.NoError(t, bus.Stop())

	assert.EqualValues(t, 5, h.calls.Load())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(logger.NewNoop())
	h := &countingHandler{eventType: "catalog.test"}
	require.NoError(t, bus.Subscribe("catalog.test", h))
	require.NoError(t, bus.Unsubscribe("catalog.test", h))

	require.NoError(t, bus.Publish(context.Background(), NewBaseEvent("catalog.test", "agg")))
	assert.Zero(t, h.calls.Load())
}
