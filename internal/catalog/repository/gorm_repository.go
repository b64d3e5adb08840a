package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/catalogd/pkg/errors"
	"github.com/narwhalmedia/catalogd/pkg/repository"
)

// linkUpdateColumns are overwritten when a source link is seen again.
var linkUpdateColumns = []string{
	"quality", "file_size", "codec_info", "part_number",
	"subtitle_paths", "status", "last_verified_at", "updated_at",
}

// GormRepository implements the repository interfaces using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// CreateSource creates a new source.
func (r *GormRepository) CreateSource(ctx context.Context, source *domain.Source) error {
	model := sourceFromDomain(source)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to create source %q: %w", source.Name, err)
	}
	*source = *sourceToDomain(model)
	return nil
}

// GetSource retrieves a source by ID.
func (r *GormRepository) GetSource(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	model, err := repository.FindByID[Source](ctx, r.db, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, id)
		}
		return nil, err
	}
	return sourceToDomain(model), nil
}

// ListSources lists sources ordered by priority, highest first.
func (r *GormRepository) ListSources(ctx context.Context, activeOnly bool) ([]*domain.Source, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var models []*Source
	if err := query.Order("priority DESC").Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := make([]*domain.Source, 0, len(models))
	for _, m := range models {
		sources = append(sources, sourceToDomain(m))
	}
	return sources, nil
}

// TouchSourceScanned stamps the last scan time of a source.
func (r *GormRepository) TouchSourceScanned(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Source{}).Where("id = ?", id).Update("last_scan_at", at).Error
}

// ExistingFilePaths returns every file path already recorded for a source.
func (r *GormRepository) ExistingFilePaths(ctx context.Context, sourceID uuid.UUID) (map[string]struct{}, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&ShadowContentSource{}).
		Where("source_id = ?", sourceID).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load existing paths: %w", err)
	}

	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set, nil
}

// InsertShadowEntries inserts entries in chunks, skipping (source, path)
// pairs that already exist. It returns the number of rows written.
func (r *GormRepository) InsertShadowEntries(ctx context.Context, entries []*domain.ShadowEntry, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	rows := make([]ShadowContentSource, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, *shadowFromDomain(e))
	}

	inserted, err := repository.InsertIgnore(ctx, r.db, rows, chunkSize, "source_id", "file_path")
	if err != nil {
		return int(inserted), fmt.Errorf("failed to insert shadow entries: %w", err)
	}
	return int(inserted), nil
}

// GetShadowEntry retrieves a shadow entry by ID.
func (r *GormRepository) GetShadowEntry(ctx context.Context, id uint) (*domain.ShadowEntry, error) {
	model, err := repository.FindByID[ShadowContentSource](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return shadowToDomain(model), nil
}

// ListPendingByBatch returns the pending entries of a batch, newest first.
func (r *GormRepository) ListPendingByBatch(ctx context.Context, batchID string) ([]*domain.ShadowEntry, error) {
	var models []*ShadowContentSource
	err := r.db.WithContext(ctx).
		Where("scan_batch_id = ? AND enrichment_status = ?", batchID, domain.StatusPending).
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}

	entries := make([]*domain.ShadowEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, shadowToDomain(m))
	}
	return entries, nil
}

// UpdateShadowStatus sets the enrichment status of one entry.
func (r *GormRepository) UpdateShadowStatus(ctx context.Context, id uint, status domain.EnrichmentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&ShadowContentSource{}).
		Where("id = ?", id).
		Update("enrichment_status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update shadow entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.NotFound(fmt.Sprintf("shadow entry %d not found", id))
	}
	return nil
}

// BatchSourceID returns the source that produced a batch.
func (r *GormRepository) BatchSourceID(ctx context.Context, batchID string) (uuid.UUID, error) {
	var model ShadowContentSource
	err := r.db.WithContext(ctx).
		Select("source_id").
		Where("scan_batch_id = ?", batchID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrBatchNotFound, batchID)
		}
		return uuid.Nil, err
	}
	return model.SourceID, nil
}

// RequeueBatch moves entries of batchID in one of statuses back to pending
// under newBatchID.
func (r *GormRepository) RequeueBatch(
	ctx context.Context,
	batchID, newBatchID string,
	statuses ...domain.EnrichmentStatus,
) (int64, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	result := r.db.WithContext(ctx).
		Model(&ShadowContentSource{}).
		Where("scan_batch_id = ? AND enrichment_status IN ?", batchID, values).
		Updates(map[string]interface{}{
			"scan_batch_id":     newBatchID,
			"enrichment_status": string(domain.StatusPending),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue batch %s: %w", batchID, result.Error)
	}
	return result.RowsAffected, nil
}

// CountByBatchStatus tallies the entries of a batch per status.
func (r *GormRepository) CountByBatchStatus(ctx context.Context, batchID string) (map[domain.EnrichmentStatus]int64, error) {
	var rows []struct {
		EnrichmentStatus string
		Total            int64
	}
	err := r.db.WithContext(ctx).
		Model(&ShadowContentSource{}).
		Select("enrichment_status, COUNT(*) AS total").
		Where("scan_batch_id = ?", batchID).
		Group("enrichment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count batch %s: %w", batchID, err)
	}

	counts := make(map[domain.EnrichmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.EnrichmentStatus(row.EnrichmentStatus)] = row.Total
	}
	return counts, nil
}

// FindContentByTMDbID returns the catalog entry carrying a TMDb id.
func (r *GormRepository) FindContentByTMDbID(ctx context.Context, tmdbID int64) (*domain.CatalogEntry, error) {
	model, err := repository.FindOneBy[Content](ctx, r.db, "tmdb_id = ?", tmdbID)
	if err != nil {
		return nil, err
	}
	return contentToDomain(model, nil), nil
}

// UpsertCatalogEntry updates the entry sharing entry.TMDbID or creates a new
// row. Entries without a TMDb id always create. It reports whether a row was
// created and writes the stored id and timestamps back onto entry.
func (r *GormRepository) UpsertCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) (bool, error) {
	var model Content
	created := true

	if entry.TMDbID != nil {
		err := r.db.WithContext(ctx).Where("tmdb_id = ?", *entry.TMDbID).First(&model).Error
		switch {
		case err == nil:
			created = false
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return false, fmt.Errorf("failed to look up content: %w", err)
		}
	}

	applyContent(&model, entry)

	var err error
	if created {
		err = r.db.WithContext(ctx).Create(&model).Error
	} else {
		err = r.db.WithContext(ctx).Save(&model).Error
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert content %q: %w", entry.Title, err)
	}

	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	entry.UpdatedAt = model.UpdatedAt
	return created, nil
}

// AttachGenres finds or creates each genre by slug and links it to the
// content. Existing links are kept.
func (r *GormRepository) AttachGenres(ctx context.Context, contentID uuid.UUID, names []string) error {
	db := r.db.WithContext(ctx)
	for _, name := range names {
		slug := domain.Slugify(name)
		if slug == "" {
			continue
		}

		var genre Genre
		err := db.Where("slug = ?", slug).First(&genre).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			genre = Genre{Name: name, Slug: slug}
			err = db.Create(&genre).Error
		}
		if err != nil {
			return fmt.Errorf("failed to resolve genre %q: %w", name, err)
		}

		link := []ContentGenre{{ContentID: contentID, GenreID: genre.ID}}
		if _, err := repository.InsertIgnore(ctx, r.db, link, 1, "content_id", "genre_id"); err != nil {
			return fmt.Errorf("failed to attach genre %q: %w", name, err)
		}
	}
	return nil
}

// GetCatalogEntry retrieves a catalog entry with its genres.
func (r *GormRepository) GetCatalogEntry(ctx context.Context, id uuid.UUID) (*domain.CatalogEntry, error) {
	model, err := repository.FindByID[Content](ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	var genres []Genre
	err = r.db.WithContext(ctx).
		Model(&Genre{}).
		Joins("JOIN content_genres ON content_genres.genre_id = genres.id").
		Where("content_genres.content_id = ?", id).
		Order("genres.name").
		Find(&genres).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	return contentToDomain(model, genres), nil
}

// CountCatalogEntries returns the number of catalog entries.
func (r *GormRepository) CountCatalogEntries(ctx context.Context) (int64, error) {
	return repository.Count[Content](ctx, r.db)
}

// FindOrCreateSeason returns the season of a series, creating it on first use.
func (r *GormRepository) FindOrCreateSeason(ctx context.Context, contentID uuid.UUID, number int) (*domain.Season, error) {
	db := r.db.WithContext(ctx)

	var season Season
	err := db.Where("content_id = ? AND season_number = ?", contentID, number).First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		season = Season{
			ContentID:    contentID,
			SeasonNumber: number,
			Title:        fmt.Sprintf("Season %d", number),
		}
		err = db.Create(&season).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find or create season %d: %w", number, err)
	}
	return seasonToDomain(&season), nil
}

// FindOrCreateEpisode returns the episode of a season, creating it on first use.
func (r *GormRepository) FindOrCreateEpisode(ctx context.Context, season *domain.Season, number int) (*domain.Episode, error) {
	db := r.db.WithContext(ctx)

	var episode Episode
	err := db.Where("season_id = ? AND episode_number = ?", season.ID, number).First(&episode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		episode = Episode{
			SeasonID:      season.ID,
			ContentID:     season.ContentID,
			EpisodeNumber: number,
			Title:         fmt.Sprintf("Episode %d", number),
		}
		err = db.Create(&episode).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find or create episode %d: %w", number, err)
	}
	return episodeToDomain(&episode), nil
}

// UpsertSourceLink inserts the link or overwrites the mutable columns of the
// row sharing its (linkable, source, path) key. It returns the stored row.
func (r *GormRepository) UpsertSourceLink(ctx context.Context, link *domain.SourceLink) (*domain.SourceLink, error) {
	model := linkFromDomain(link)
	conflict := []string{"linkable_type", "linkable_id", "source_id", "file_path"}
	if err := repository.Upsert(ctx, r.db, model, conflict, linkUpdateColumns); err != nil {
		return nil, fmt.Errorf("failed to upsert source link %s: %w", link.FilePath, err)
	}

	stored, err := repository.FindOneBy[SourceLink](ctx, r.db,
		"linkable_type = ? AND linkable_id = ? AND source_id = ? AND file_path = ?",
		model.LinkableType, model.LinkableID, model.SourceID, model.FilePath)
	if err != nil {
		return nil, err
	}
	return linkToDomain(stored), nil
}

// ListSourceLinks lists the links of one playable unit.
func (r *GormRepository) ListSourceLinks(
	ctx context.Context,
	linkableType domain.LinkableType,
	linkableID uuid.UUID,
) ([]*domain.SourceLink, error) {
	var models []*SourceLink
	err := r.db.WithContext(ctx).
		Where("linkable_type = ? AND linkable_id = ?", string(linkableType), linkableID).
		Order("file_path").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list source links: %w", err)
	}

	links := make([]*domain.SourceLink, 0, len(models))
	for _, m := range models {
		links = append(links, linkToDomain(m))
	}
	return links, nil
}

// CreateScanLog creates a new scan log.
func (r *GormRepository) CreateScanLog(ctx context.Context, log *domain.ScanLog) error {
	model := scanLogFromDomain(log)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to create scan log: %w", err)
	}
	log.ID = model.ID
	return nil
}

// UpdateScanLog saves a scan log.
func (r *GormRepository) UpdateScanLog(ctx context.Context, log *domain.ScanLog) error {
	return repository.Update(ctx, r.db, scanLogFromDomain(log))
}

// LatestScanLog returns the most recent log of a source for one phase.
func (r *GormRepository) LatestScanLog(ctx context.Context, sourceID uuid.UUID, phase domain.ScanPhase) (*domain.ScanLog, error) {
	var model SourceScanLog
	err := r.db.WithContext(ctx).
		Where("source_id = ? AND phase = ?", sourceID, string(phase)).
		Order("started_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("scan log not found")
		}
		return nil, err
	}
	return scanLogToDomain(&model), nil
}

// RecordEnrichmentTotals writes matched and failed counts onto the latest
// collector log of a source. A source without a log is left untouched.
func (r *GormRepository) RecordEnrichmentTotals(ctx context.Context, sourceID uuid.UUID, matched, failed int) error {
	log, err := r.LatestScanLog(ctx, sourceID, domain.PhaseCollector)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	return r.db.WithContext(ctx).
		Model(&SourceScanLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"items_matched": matched,
			"items_failed":  failed,
		}).Error
}
