package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

// SourceRepository defines data access for crawlable sources.
type SourceRepository interface {
	CreateSource(ctx context.Context, source *domain.Source) error
	GetSource(ctx context.Context, id uuid.UUID) (*domain.Source, error)
	ListSources(ctx context.Context, activeOnly bool) ([]*domain.Source, error)
	TouchSourceScanned(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ShadowRepository defines data access for raw file observations.
type ShadowRepository interface {
	ExistingFilePaths(ctx context.Context, sourceID uuid.UUID) (map[string]struct{}, error)
	InsertShadowEntries(ctx context.Context, entries []*domain.ShadowEntry, chunkSize int) (int, error)
	GetShadowEntry(ctx context.Context, id uint) (*domain.ShadowEntry, error)
	ListPendingByBatch(ctx context.Context, batchID string) ([]*domain.ShadowEntry, error)
	UpdateShadowStatus(ctx context.Context, id uint, status domain.EnrichmentStatus) error
	BatchSourceID(ctx context.Context, batchID string) (uuid.UUID, error)
	RequeueBatch(ctx context.Context, batchID, newBatchID string, statuses ...domain.EnrichmentStatus) (int64, error)
	CountByBatchStatus(ctx context.Context, batchID string) (map[domain.EnrichmentStatus]int64, error)
}

// CatalogRepository defines data access for the deduplicated catalog.
type CatalogRepository interface {
	FindContentByTMDbID(ctx context.Context, tmdbID int64) (*domain.CatalogEntry, error)
	UpsertCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) (bool, error)
	AttachGenres(ctx context.Context, contentID uuid.UUID, names []string) error
	GetCatalogEntry(ctx context.Context, id uuid.UUID) (*domain.CatalogEntry, error)
	CountCatalogEntries(ctx context.Context) (int64, error)
	FindOrCreateSeason(ctx context.Context, contentID uuid.UUID, number int) (*domain.Season, error)
	FindOrCreateEpisode(ctx context.Context, season *domain.Season, number int) (*domain.Episode, error)
	UpsertSourceLink(ctx context.Context, link *domain.SourceLink) (*domain.SourceLink, error)
	ListSourceLinks(ctx context.Context, linkableType domain.LinkableType, linkableID uuid.UUID) ([]*domain.SourceLink, error)
}

// ScanLogRepository defines data access for per-source scan logs.
type ScanLogRepository interface {
	CreateScanLog(ctx context.Context, log *domain.ScanLog) error
	UpdateScanLog(ctx context.Context, log *domain.ScanLog) error
	LatestScanLog(ctx context.Context, sourceID uuid.UUID, phase domain.ScanPhase) (*domain.ScanLog, error)
	RecordEnrichmentTotals(ctx context.Context, sourceID uuid.UUID, matched, failed int) error
}

// Repository combines all catalog repositories.
type Repository interface {
	SourceRepository
	ShadowRepository
	CatalogRepository
	ScanLogRepository

	// Transaction runs fn against a repository bound to one database
	// transaction. Returning an error rolls it back.
	Transaction(ctx context.Context, fn func(Repository) error) error
}
