package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// BatchResult summarizes one enrichment run.
type BatchResult struct {
	BatchID   string
	Processed int
	Matched   int
	Failed    int
	Paused    bool
}

// EnrichmentService processes shadow entries one at a time: parse, fetch
// metadata, score, upsert, link.
type EnrichmentService struct {
	repo     repository.Repository
	parser   *domain.FilenameParser
	fetcher  *domain.MetadataFetcher
	catalog  CatalogServiceInterface
	control  *ControlStore
	eventBus interfaces.EventBus
	logger   interfaces.Logger
}

// NewEnrichmentService creates a new enrichment service
func NewEnrichmentService(
	repo repository.Repository,
	parser *domain.FilenameParser,
	fetcher *domain.MetadataFetcher,
	catalog CatalogServiceInterface,
	control *ControlStore,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *EnrichmentService {
	return &EnrichmentService{
		repo:     repo,
		parser:   parser,
		fetcher:  fetcher,
		catalog:  catalog,
		control:  control,
		eventBus: eventBus,
		logger:   logger.WithFields(interfaces.String("component", "enrichment")),
	}
}

// Enrich moves entry to processing, runs the pipeline and stores the
// terminal status. The returned error is non-nil only when a status could
// not be persisted or ctx ended; in the latter case the entry goes back to
// pending.
func (s *EnrichmentService) Enrich(ctx context.Context, entry *domain.ShadowEntry) (status domain.EnrichmentStatus, err error) {
	if err := s.repo.UpdateShadowStatus(ctx, entry.ID, domain.StatusProcessing); err != nil {
		return entry.Status, fmt.Errorf("mark entry %d processing: %w", entry.ID, err)
	}
	entry.Status = domain.StatusProcessing

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Enrichment panicked",
				interfaces.Uint("shadow_entry_id", entry.ID),
				interfaces.String("file", entry.RawFilename),
				interfaces.Any("panic", r))
			status, err = s.finish(context.WithoutCancel(ctx), entry, domain.StatusFailed)
		}
	}()

	status = s.process(ctx, entry)

	if ctxErr := ctx.Err(); ctxErr != nil && status != domain.StatusCompleted {
		if _, err := s.finish(context.WithoutCancel(ctx), entry, domain.StatusPending); err != nil {
			return domain.StatusPending, err
		}
		return domain.StatusPending, ctxErr
	}

	return s.finish(context.WithoutCancel(ctx), entry, status)
}

func (s *EnrichmentService) finish(ctx context.Context, entry *domain.ShadowEntry, status domain.EnrichmentStatus) (domain.EnrichmentStatus, error) {
	if err := s.repo.UpdateShadowStatus(ctx, entry.ID, status); err != nil {
		return status, fmt.Errorf("store status %s for entry %d: %w", status, entry.ID, err)
	}
	entry.Status = status
	return status, nil
}

func (s *EnrichmentService) process(ctx context.Context, entry *domain.ShadowEntry) domain.EnrichmentStatus {
	log := s.logger.WithFields(
		interfaces.Uint("shadow_entry_id", entry.ID),
		interfaces.String("file", entry.RawFilename))

	parsed := s.parser.Parse(entry.RawFilename)
	if parsed.Title == "" {
		log.Warn("Empty title from filename", interfaces.Error(domain.ErrEmptyTitle))
		return domain.StatusFailed
	}

	metadata, err := s.fetcher.Fetch(ctx, domain.QueryFor(parsed))
	switch {
	case errors.Is(err, domain.ErrNoMatch):
		log.Info("No metadata match",
			interfaces.String("title", parsed.Title),
			interfaces.Any("year", parsed.Year))
		return domain.StatusUnmatched
	case err != nil:
		log.Error("Metadata lookup failed", interfaces.Error(err))
		return domain.StatusFailed
	}

	confidence := domain.ConfidenceScore(parsed.Title, metadata.Title)

	if _, err := s.catalog.Upsert(ctx, entry, parsed, metadata, confidence); err != nil {
		log.Error("Catalog upsert failed", interfaces.Error(err))
		return domain.StatusFailed
	}
	return domain.StatusCompleted
}

// RunBatch enriches the pending entries of batchID newest first. It stops
// early when the pause flag is set or ctx ends, leaving the rest pending,
// and always reports the totals to the source's latest collector log.
func (s *EnrichmentService) RunBatch(ctx context.Context, batchID string) (*BatchResult, error) {
	sourceID, err := s.repo.BatchSourceID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListPendingByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}

	log := s.logger.WithFields(interfaces.String("batch_id", batchID))
	log.Info("Enrichment batch started", interfaces.Int("pending", len(entries)))

	result := &BatchResult{BatchID: batchID}
	var runErr error

	for _, entry := range entries {
		paused, err := s.control.IsPaused(ctx)
		if err != nil {
			log.Warn("Failed to read pause flag", interfaces.Error(err))
		}
		if paused {
			log.Info("Enrichment paused, stopping batch", interfaces.Int("processed", result.Processed))
			result.Paused = true
			break
		}
		if ctx.Err() != nil {
			break
		}

		status, err := s.Enrich(ctx, entry)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("Stopping batch on repository failure", interfaces.Error(err))
				runErr = err
			}
			break
		}

		result.Processed++
		switch status {
		case domain.StatusCompleted:
			result.Matched++
		case domain.StatusFailed, domain.StatusUnmatched:
			result.Failed++
		}

		if err := s.control.RecordProcessed(ctx, result.Processed); err != nil {
			log.Warn("Failed to record processed count", interfaces.Error(err))
		}
	}

	if ctx.Err() != nil && runErr == nil {
		runErr = ctx.Err()
	}

	// Totals are recorded even when the caller's budget ran out.
	bg := context.WithoutCancel(ctx)
	if err := s.repo.RecordEnrichmentTotals(bg, sourceID, result.Matched, result.Failed); err != nil {
		log.Error("Failed to record enrichment totals", interfaces.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	s.eventBus.PublishAsync(bg, domain.NewBatchEnrichedEvent(
		batchID, result.Processed, result.Matched, result.Failed, result.Paused))

	log.Info("Enrichment batch finished",
		interfaces.Int("processed", result.Processed),
		interfaces.Int("matched", result.Matched),
		interfaces.Int("failed", result.Failed),
		interfaces.Bool("paused", result.Paused))

	return result, runErr
}

// Requeue moves the failed and unmatched entries of batchID to pending under
// a fresh batch id, which is returned with the number of entries moved.
func (s *EnrichmentService) Requeue(ctx context.Context, batchID string) (string, int64, error) {
	if _, err := s.repo.BatchSourceID(ctx, batchID); err != nil {
		return "", 0, err
	}

	newBatchID := uuid.NewString()
	n, err := s.repo.RequeueBatch(ctx, batchID, newBatchID, domain.StatusFailed, domain.StatusUnmatched)
	if err != nil {
		return "", 0, fmt.Errorf("requeue batch %s: %w", batchID, err)
	}

	s.logger.Info("Batch requeued",
		interfaces.String("batch_id", batchID),
		interfaces.String("new_batch_id", newBatchID),
		interfaces.Int64("entries", n))

	return newBatchID, n, nil
}
