package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/catalogd/pkg/errors"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const (
	castLimit     = 10
	altTitleLimit = 20

	upsertAttempts   = 3
	upsertRetryDelay = 20 * time.Millisecond
)

// UpsertResult is what one upsert wrote.
type UpsertResult struct {
	Entry   *domain.CatalogEntry
	Created bool
	Link    *domain.SourceLink
}

// CatalogService creates or updates catalog entries from matched metadata
// and links the shadow entry's file to them.
type CatalogService struct {
	repo      repository.Repository
	eventBus  interfaces.EventBus
	threshold float64
	logger    interfaces.Logger
	now       func() time.Time
}

// NewCatalogService creates the upsert engine. Entries scoring at least
// threshold are published and marked completed, the rest are flagged.
func NewCatalogService(
	repo repository.Repository,
	eventBus interfaces.EventBus,
	threshold float64,
	logger interfaces.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		eventBus:  eventBus,
		threshold: threshold,
		logger:    logger.WithFields(interfaces.String("component", "catalog")),
		now:       time.Now,
	}
}

// Upsert writes the catalog entry, its genres, the season/episode hierarchy
// for series and the source link in one transaction. Two batches racing on
// the same TMDb id lose the unique constraint on one side; that side retries
// and then finds the row.
func (s *CatalogService) Upsert(
	ctx context.Context,
	shadow *domain.ShadowEntry,
	parsed *domain.ParsedFilename,
	metadata *domain.Metadata,
	confidence float64,
) (*UpsertResult, error) {
	var result *UpsertResult

	err := retry.Do(
		func() error {
			entry := s.buildEntry(parsed, metadata, confidence)
			res := &UpsertResult{Entry: entry}

			err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
				created, err := tx.UpsertCatalogEntry(ctx, entry)
				if err != nil {
					return err
				}
				res.Created = created

				if err := tx.AttachGenres(ctx, entry.ID, metadata.Genres); err != nil {
					return err
				}

				link, err := s.link(ctx, tx, shadow, parsed, entry)
				if err != nil {
					return err
				}
				res.Link = link
				return nil
			})
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(upsertAttempts),
		retry.Delay(upsertRetryDelay),
		retry.RetryIf(pkgerrors.IsDuplicateError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("Retrying catalog upsert after unique conflict",
				interfaces.Uint("shadow_entry_id", shadow.ID),
				interfaces.Int("attempt", int(n)+1))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert catalog entry: %w", err)
	}

	s.eventBus.PublishAsync(ctx, domain.NewCatalogEntryUpsertedEvent(result.Entry, result.Created))

	s.logger.Info("Catalog entry upserted",
		interfaces.String("content_id", result.Entry.ID.String()),
		interfaces.String("title", result.Entry.Title),
		interfaces.Float64("confidence", confidence),
		interfaces.String("status", string(result.Entry.EnrichmentStatus)),
		interfaces.Bool("created", result.Created))

	return result, nil
}

func (s *CatalogService) buildEntry(parsed *domain.ParsedFilename, md *domain.Metadata, confidence float64) *domain.CatalogEntry {
	published := confidence >= s.threshold
	status := domain.CatalogFlagged
	if published {
		status = domain.CatalogCompleted
	}

	title := md.Title
	if title == "" {
		title = parsed.Title
	}
	year := parsed.Year
	if year == nil {
		year = md.Year
	}

	cast := md.Cast
	if len(cast) > castLimit {
		cast = cast[:castLimit]
	}

	return &domain.CatalogEntry{
		TMDbID:            md.TMDbID,
		IMDbID:            md.IMDbID,
		Kind:              parsed.Kind,
		Title:             title,
		OriginalTitle:     md.OriginalTitle,
		Year:              year,
		Description:       md.Overview,
		PosterURL:         md.PosterURL,
		BackdropURL:       md.BackdropURL,
		Cast:              cast,
		Director:          md.Director,
		Rating:            md.Rating,
		VoteCount:         md.VoteCount,
		Runtime:           md.Runtime,
		TrailerURL:        md.TrailerURL,
		AlternativeTitles: uniqueTitles(md.AlternativeTitles, altTitleLimit),
		Language:          md.Language,
		EnrichmentStatus:  status,
		ConfidenceScore:   confidence,
		IsPublished:       published,
	}
}

// link points the file at the episode for series that name one, and at the
// catalog entry otherwise.
func (s *CatalogService) link(
	ctx context.Context,
	tx repository.Repository,
	shadow *domain.ShadowEntry,
	parsed *domain.ParsedFilename,
	entry *domain.CatalogEntry,
) (*domain.SourceLink, error) {
	link := &domain.SourceLink{
		LinkableType:   domain.LinkableContent,
		LinkableID:     entry.ID,
		SourceID:       shadow.SourceID,
		FilePath:       shadow.FilePath,
		Quality:        parsed.Quality,
		FileSize:       shadow.FileSize,
		CodecInfo:      parsed.Codec,
		PartNumber:     parsed.PartNumber,
		SubtitlePaths:  shadow.SubtitlePaths,
		Status:         domain.LinkActive,
		LastVerifiedAt: s.now().UTC(),
	}

	if parsed.IsSeries() && parsed.HasEpisode() {
		season, err := tx.FindOrCreateSeason(ctx, entry.ID, *parsed.Season)
		if err != nil {
			return nil, err
		}
		episode, err := tx.FindOrCreateEpisode(ctx, season, *parsed.Episode)
		if err != nil {
			return nil, err
		}
		link.LinkableType = domain.LinkableEpisode
		link.LinkableID = episode.ID
		link.PartNumber = nil
	}

	return tx.UpsertSourceLink(ctx, link)
}

func uniqueTitles(titles []string, limit int) []string {
	seen := make(map[string]struct{}, len(titles))
	var out []string
	for _, t := range titles {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
