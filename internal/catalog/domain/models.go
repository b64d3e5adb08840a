package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind distinguishes movies from series.
type ContentKind string

const (
	KindMovie  ContentKind = "movie"
	KindSeries ContentKind = "series"
)

// EnrichmentStatus is the lifecycle state of a ShadowEntry.
//
//	pending -> processing -> completed | failed | unmatched
type EnrichmentStatus string

const (
	StatusPending    EnrichmentStatus = "pending"
	StatusProcessing EnrichmentStatus = "processing"
	StatusCompleted  EnrichmentStatus = "completed"
	StatusFailed     EnrichmentStatus = "failed"
	StatusUnmatched  EnrichmentStatus = "unmatched"
)

// IsTerminal reports whether the status ends a run for that entry.
func (s EnrichmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusUnmatched
}

// CatalogStatus reflects whether a catalog entry passed the confidence threshold.
type CatalogStatus string

const (
	CatalogCompleted CatalogStatus = "completed"
	CatalogFlagged   CatalogStatus = "flagged"
)

// LinkStatus is the liveness of a SourceLink.
type LinkStatus string

const (
	LinkActive LinkStatus = "active"
	LinkBroken LinkStatus = "broken"
)

// LinkableType names the playable unit a SourceLink points at.
type LinkableType string

const (
	LinkableContent LinkableType = "content"
	LinkableEpisode LinkableType = "episode"
)

// ScanPhase identifies which pipeline stage wrote a ScanLog.
type ScanPhase string

const PhaseCollector ScanPhase = "collector"

// ScanStatus is the state of a ScanLog.
type ScanStatus string

const (
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// Source is a file server the collector crawls.
type Source struct {
	ID          uuid.UUID
	Name        string
	BaseURL     string
	ScraperType string
	Config      map[string]string
	IsActive    bool
	HealthScore int
	Priority    int
	LastScanAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShadowEntry is one raw file observation awaiting enrichment.
// (SourceID, FilePath) is unique.
type ShadowEntry struct {
	ID            uint
	SourceID      uuid.UUID
	RawFilename   string
	FilePath      string
	FileExtension string
	FileSize      *int64
	SubtitlePaths []string
	ScanBatchID   string
	Status        EnrichmentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CastMember is one billed performer.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// CatalogEntry is a deduplicated movie or series. TMDbID is unique when set.
type CatalogEntry struct {
	ID                uuid.UUID
	TMDbID            *int64
	IMDbID            string
	Kind              ContentKind
	Title             string
	OriginalTitle     string
	Year              *int
	Description       string
	PosterURL         string
	BackdropURL       string
	Cast              []CastMember
	Director          string
	Rating            *float64
	VoteCount         int
	Runtime           *int
	TrailerURL        string
	AlternativeTitles []string
	Language          string
	EnrichmentStatus  CatalogStatus
	ConfidenceScore   float64
	IsPublished       bool
	Genres            []Genre
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Genre is a classification tag keyed by slug.
type Genre struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// Season belongs to a series entry; (ContentID, SeasonNumber) is unique.
type Season struct {
	ID           uuid.UUID
	ContentID    uuid.UUID
	SeasonNumber int
	Title        string
}

// Episode belongs to a season; (SeasonID, EpisodeNumber) is unique.
type Episode struct {
	ID            uuid.UUID
	SeasonID      uuid.UUID
	ContentID     uuid.UUID
	EpisodeNumber int
	Title         string
}

// SourceLink points a playable unit at a file on a source.
// (LinkableType, LinkableID, SourceID, FilePath) is unique.
type SourceLink struct {
	ID             uuid.UUID
	LinkableType   LinkableType
	LinkableID     uuid.UUID
	SourceID       uuid.UUID
	FilePath       string
	Quality        string
	FileSize       *int64
	CodecInfo      string
	PartNumber     *int
	SubtitlePaths  []string
	Status         LinkStatus
	LastVerifiedAt time.Time
}

// ScanLog records one collection pass and, later, its enrichment totals.
type ScanLog struct {
	ID           uuid.UUID
	SourceID     uuid.UUID
	Phase        ScanPhase
	Status       ScanStatus
	ItemsFound   int
	ItemsMatched int
	ItemsFailed  int
	ErrorLog     string
	StartedAt    time.Time
	CompletedAt  *time.Time
}
