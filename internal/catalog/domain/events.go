package domain

import (
	"strconv"

	"github.com/narwhalmedia/catalogd/pkg/events"
)

const (
	EventBatchCollected       = "catalog.batch_collected"
	EventBatchEnriched        = "catalog.batch_enriched"
	EventCatalogEntryUpserted = "catalog.entry_upserted"
)

// BatchCollectedEvent is published when a collection pass inserted new entries.
type BatchCollectedEvent struct {
	events.BaseEvent
	BatchID  string `json:"batch_id"`
	SourceID string `json:"source_id"`
	Inserted int    `json:"inserted"`
}

// NewBatchCollectedEvent creates a BatchCollectedEvent keyed by batch id.
func NewBatchCollectedEvent(batchID, sourceID string, inserted int) *BatchCollectedEvent {
	return &BatchCollectedEvent{
		BaseEvent: events.NewBaseEvent(EventBatchCollected, batchID),
		BatchID:   batchID,
		SourceID:  sourceID,
		Inserted:  inserted,
	}
}

// BatchEnrichedEvent summarises one orchestrator run.
type BatchEnrichedEvent struct {
	events.BaseEvent
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
	Matched   int    `json:"matched"`
	Failed    int    `json:"failed"`
	Paused    bool   `json:"paused"`
}

func NewBatchEnrichedEvent(batchID string, processed, matched, failed int, paused bool) *BatchEnrichedEvent {
	return &BatchEnrichedEvent{
		BaseEvent: events.NewBaseEvent(EventBatchEnriched, batchID),
		BatchID:   batchID,
		Processed: processed,
		Matched:   matched,
		Failed:    failed,
		Paused:    paused,
	}
}

// CatalogEntryUpsertedEvent is published after a catalog entry is written.
type CatalogEntryUpsertedEvent struct {
	events.BaseEvent
	ContentID  string        `json:"content_id"`
	TMDbID     string        `json:"tmdb_id,omitempty"`
	Title      string        `json:"title"`
	Kind       ContentKind   `json:"type"`
	Status     CatalogStatus `json:"enrichment_status"`
	Confidence float64       `json:"confidence_score"`
	Created    bool          `json:"created"`
}

func NewCatalogEntryUpsertedEvent(entry *CatalogEntry, created bool) *CatalogEntryUpsertedEvent {
	e := &CatalogEntryUpsertedEvent{
		BaseEvent:  events.NewBaseEvent(EventCatalogEntryUpserted, entry.ID.String()),
		ContentID:  entry.ID.String(),
		Title:      entry.Title,
		Kind:       entry.Kind,
		Status:     entry.EnrichmentStatus,
		Confidence: entry.ConfidenceScore,
		Created:    created,
	}
	if entry.TMDbID != nil {
		e.TMDbID = strconv.FormatInt(*entry.TMDbID, 10)
	}
	return e
}
