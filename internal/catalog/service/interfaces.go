package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

// CatalogServiceInterface is the catalog upsert engine.
type CatalogServiceInterface interface {
	Upsert(
		ctx context.Context,
		shadow *domain.ShadowEntry,
		parsed *domain.ParsedFilename,
		metadata *domain.Metadata,
		confidence float64,
	) (*UpsertResult, error)
}

// EnrichmentServiceInterface drives shadow entries through parse, match and upsert.
type EnrichmentServiceInterface interface {
	Enrich(ctx context.Context, entry *domain.ShadowEntry) (domain.EnrichmentStatus, error)
	RunBatch(ctx context.Context, batchID string) (*BatchResult, error)
	Requeue(ctx context.Context, batchID string) (string, int64, error)
}

// CollectorServiceInterface turns source listings into shadow entries.
type CollectorServiceInterface interface {
	ScanSource(ctx context.Context, sourceID uuid.UUID) (*ScanResult, error)
	ScanAll(ctx context.Context) ([]*ScanResult, error)
}

var (
	_ CatalogServiceInterface    = (*CatalogService)(nil)
	_ EnrichmentServiceInterface = (*EnrichmentService)(nil)
	_ CollectorServiceInterface  = (*CollectorService)(nil)
)
