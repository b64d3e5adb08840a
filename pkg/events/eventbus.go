package events

import (
	"context"
	"sync"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// InMemoryEventBus dispatches events to handlers in the same process.
// Handler errors are logged and never stop delivery to the remaining handlers.
type InMemoryEventBus struct {
	handlers map[string][]interfaces.EventHandler
	mu       sync.RWMutex
	logger   interfaces.Logger
	wg       sync.WaitGroup
}

var _ interfaces.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates an empty bus.
func NewInMemoryEventBus(logger interfaces.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]interfaces.EventHandler),
		logger:   logger,
	}
}

func (eb *InMemoryEventBus) Publish(ctx context.Context, event interfaces.Event) error {
	eb.mu.RLock()
	handlers := append([]interfaces.EventHandler(nil), eb.handlers[event.EventType()]...)
	eb.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			eb.logger.Error("Event handler failed",
				interfaces.String("event_type", event.EventType()),
				interfaces.String("aggregate_id", event.AggregateID()),
				interfaces.Error(err))
		}
	}
	return nil
}

// PublishAsync runs Publish on its own goroutine, detached from ctx cancellation.
func (eb *InMemoryEventBus) PublishAsync(ctx context.Context, event interfaces.Event) {
	eb.wg.Add(1)
	go func() {
		defer eb.wg.Done()
		_ = eb.Publish(context.WithoutCancel(ctx), event)
	}()
}

func (eb *InMemoryEventBus) Subscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("Event handler subscribed", interfaces.String("event_type", eventType))
	return nil
}

func (eb *InMemoryEventBus) Unsubscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	hs := eb.handlers[eventType]
	for i, h := range hs {
		if h == handler {
			eb.handlers[eventType] = append(hs[:i:i], hs[i+1:]...)
			break
		}
	}
	return nil
}

func (eb *InMemoryEventBus) Start(ctx context.Context) error {
	return nil
}

// Stop blocks until every PublishAsync dispatch has returned.
func (eb *InMemoryEventBus) Stop() error {
	eb.wg.Wait()
	return nil
}
