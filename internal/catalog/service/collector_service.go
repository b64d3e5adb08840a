package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// ScanResult summarizes one collection pass.
type ScanResult struct {
	SourceID uuid.UUID
	BatchID  string
	Found    int
	Inserted int
	Skipped  int
	Invalid  int
}

// CollectorOptions tunes the collector.
type CollectorOptions struct {
	InsertChunkSize    int
	MaxConcurrentScans int
}

// CollectorService crawls sources and records new video files as pending
// shadow entries under a fresh batch id.
type CollectorService struct {
	repo       repository.Repository
	scrapers   domain.ScraperResolver
	classifier *domain.FileClassifier
	eventBus   interfaces.EventBus
	opts       CollectorOptions
	logger     interfaces.Logger
	now        func() time.Time
}

// NewCollectorService creates a new collector service
func NewCollectorService(
	repo repository.Repository,
	scrapers domain.ScraperResolver,
	classifier *domain.FileClassifier,
	eventBus interfaces.EventBus,
	opts CollectorOptions,
	logger interfaces.Logger,
) *CollectorService {
	if opts.InsertChunkSize <= 0 {
		opts.InsertChunkSize = 500
	}
	if opts.MaxConcurrentScans <= 0 {
		opts.MaxConcurrentScans = 1
	}
	return &CollectorService{
		repo:       repo,
		scrapers:   scrapers,
		classifier: classifier,
		eventBus:   eventBus,
		opts:       opts,
		logger:     logger.WithFields(interfaces.String("component", "collector")),
		now:        time.Now,
	}
}

// ScanSource runs one collection pass over a source. The pass is recorded
// in a collector scan log whether it succeeds or fails.
func (s *CollectorService) ScanSource(ctx context.Context, sourceID uuid.UUID) (*ScanResult, error) {
	source, err := s.repo.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	startedAt := s.now().UTC()
	scanLog := &domain.ScanLog{
		ID:        uuid.New(),
		SourceID:  source.ID,
		Phase:     domain.PhaseCollector,
		Status:    domain.ScanRunning,
		StartedAt: startedAt,
	}
	if err := s.repo.CreateScanLog(ctx, scanLog); err != nil {
		return nil, fmt.Errorf("create scan log: %w", err)
	}

	log := s.logger.WithFields(
		interfaces.String("source_id", source.ID.String()),
		interfaces.String("source", source.Name))

	result, err := s.collect(ctx, source, uuid.NewString())
	completedAt := s.now().UTC()
	scanLog.CompletedAt = &completedAt

	bg := context.WithoutCancel(ctx)
	if err != nil {
		log.Error("Scan failed", interfaces.Error(err))
		scanLog.Status = domain.ScanFailed
		scanLog.ErrorLog = firstLine(err.Error())
		if updateErr := s.repo.UpdateScanLog(bg, scanLog); updateErr != nil {
			log.Error("Failed to update scan log", interfaces.Error(updateErr))
		}
		return nil, err
	}

	scanLog.Status = domain.ScanCompleted
	scanLog.ItemsFound = result.Found
	scanLog.ItemsMatched = result.Inserted
	scanLog.ItemsFailed = result.Invalid
	if err := s.repo.UpdateScanLog(bg, scanLog); err != nil {
		return result, fmt.Errorf("update scan log: %w", err)
	}
	if err := s.repo.TouchSourceScanned(bg, source.ID, startedAt); err != nil {
		return result, fmt.Errorf("stamp source scan time: %w", err)
	}

	log.Info("Scan completed",
		interfaces.String("batch_id", result.BatchID),
		interfaces.Int("found", result.Found),
		interfaces.Int("inserted", result.Inserted),
		interfaces.Int("skipped", result.Skipped),
		interfaces.Int("invalid", result.Invalid))

	if result.Inserted > 0 {
		s.eventBus.PublishAsync(bg, domain.NewBatchCollectedEvent(result.BatchID, source.ID.String(), result.Inserted))
	}
	return result, nil
}

func (s *CollectorService) collect(ctx context.Context, source *domain.Source, batchID string) (*ScanResult, error) {
	scraper, err := s.scrapers.Build(*source)
	if err != nil {
		return nil, err
	}

	files, err := scraper.Crawl(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", scraper.Name(), err)
	}

	existing, err := s.repo.ExistingFilePaths(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("load existing paths: %w", err)
	}

	result := &ScanResult{SourceID: source.ID, BatchID: batchID, Found: len(files)}

	var entries []*domain.ShadowEntry
	for _, f := range files {
		if !s.classifier.IsVideo(f.Extension) {
			result.Invalid++
			continue
		}
		if _, ok := existing[f.Path]; ok {
			result.Skipped++
			continue
		}
		existing[f.Path] = struct{}{}

		entries = append(entries, &domain.ShadowEntry{
			SourceID:      source.ID,
			RawFilename:   f.Filename,
			FilePath:      f.Path,
			FileExtension: strings.ToLower(f.Extension),
			FileSize:      f.Size,
			SubtitlePaths: s.classifier.FindSubtitles(files, f.Filename),
			ScanBatchID:   batchID,
			Status:        domain.StatusPending,
		})
	}

	inserted, err := s.repo.InsertShadowEntries(ctx, entries, s.opts.InsertChunkSize)
	if err != nil {
		return nil, fmt.Errorf("insert shadow entries: %w", err)
	}
	result.Inserted = inserted
	// Rows another pass inserted first count as skipped.
	result.Skipped += len(entries) - inserted

	return result, nil
}

// ScanAll scans every active source, highest priority first, with at most
// MaxConcurrentScans passes in flight. A failing source does not stop the others.
func (s *CollectorService) ScanAll(ctx context.Context) ([]*ScanResult, error) {
	sources, err := s.repo.ListSources(ctx, true)
	if err != nil {
		return nil, err
	}

	results := make([]*ScanResult, len(sources))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.opts.MaxConcurrentScans)
	for i, source := range sources {
		p.Go(func(ctx context.Context) error {
			res, err := s.ScanSource(ctx, source.ID)
			if err != nil {
				return fmt.Errorf("source %s: %w", source.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	err = p.Wait()

	var done []*ScanResult
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}
	return done, err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
