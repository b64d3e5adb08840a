package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/service"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

// BatchCollectedHandler runs enrichment for every batch the collector inserts.
type BatchCollectedHandler struct {
	enrichment service.EnrichmentServiceInterface
	timeout    time.Duration
	logger     interfaces.Logger
}

var _ interfaces.EventHandler = (*BatchCollectedHandler)(nil)

// NewBatchCollectedHandler creates the handler. A positive timeout bounds
// each batch run.
func NewBatchCollectedHandler(
	enrichment service.EnrichmentServiceInterface,
	timeout time.Duration,
	log interfaces.Logger,
) *BatchCollectedHandler {
	return &BatchCollectedHandler{
		enrichment: enrichment,
		timeout:    timeout,
		logger:     log.WithFields(interfaces.String("component", "batch-collected-handler")),
	}
}

func (h *BatchCollectedHandler) EventType() string {
	return domain.EventBatchCollected
}

// Handle runs the batch named by the event. A paused run is not an error.
func (h *BatchCollectedHandler) Handle(ctx context.Context, event interfaces.Event) error {
	e, ok := event.(*domain.BatchCollectedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, domain.EventBatchCollected)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	ctx = logger.WithBatchID(ctx, e.BatchID)

	h.logger.Info("Handling collected batch",
		interfaces.String("batch_id", e.BatchID),
		interfaces.String("source_id", e.SourceID),
		interfaces.Int("inserted", e.Inserted))

	result, err := h.enrichment.RunBatch(ctx, e.BatchID)
	if err != nil {
		return fmt.Errorf("enrich batch %s: %w", e.BatchID, err)
	}
	if result.Paused {
		h.logger.Info("Batch left pending while enrichment is paused",
			interfaces.String("batch_id", e.BatchID),
			interfaces.Int("processed", result.Processed))
	}
	return nil
}
