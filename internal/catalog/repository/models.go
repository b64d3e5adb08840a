package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

// Source is a crawlable file server.
type Source struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name        string            `gorm:"size:255;uniqueIndex;not null"`
	BaseURL     string            `gorm:"size:1024;not null"`
	ScraperType string            `gorm:"size:50;not null;index"`
	Config      map[string]string `gorm:"serializer:json;type:text"`
	IsActive    bool              `gorm:"not null;index"`
	HealthScore int               `gorm:"not null"`
	Priority    int               `gorm:"not null"`
	LastScanAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Source) TableName() string { return "sources" }

func (m *Source) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ShadowContentSource is the raw observation of one file on one source.
type ShadowContentSource struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	SourceID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shadow_source_path,priority:1"`
	RawFilename      string    `gorm:"size:1024;not null"`
	FilePath         string    `gorm:"size:2048;not null;uniqueIndex:idx_shadow_source_path,priority:2"`
	FileExtension    string    `gorm:"size:16"`
	FileSize         *int64
	SubtitlePaths    []string `gorm:"serializer:json;type:text"`
	ScanBatchID      string   `gorm:"size:36;not null;index:idx_shadow_batch_status,priority:1"`
	EnrichmentStatus string   `gorm:"size:20;not null;index:idx_shadow_batch_status,priority:2"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ShadowContentSource) TableName() string { return "shadow_content_sources" }

// Content is a deduplicated movie or series.
type Content struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TMDbID            *int64              `gorm:"column:tmdb_id;uniqueIndex"`
	IMDbID            string              `gorm:"column:imdb_id;size:20;index"`
	Type              string              `gorm:"size:20;not null;index"`
	Title             string              `gorm:"size:512;not null;index"`
	OriginalTitle     string              `gorm:"size:512"`
	Year              *int                `gorm:"index"`
	Description       string              `gorm:"type:text"`
	Poster            string              `gorm:"size:1024"`
	Backdrop          string              `gorm:"size:1024"`
	Cast              []domain.CastMember `gorm:"serializer:json;type:text"`
	Director          string              `gorm:"size:255"`
	Rating            *float64            `gorm:"type:decimal(3,1)"`
	VoteCount         int
	Runtime           *int
	TrailerURL        string   `gorm:"size:1024"`
	AlternativeTitles []string `gorm:"serializer:json;type:text"`
	Language          string   `gorm:"size:10"`
	EnrichmentStatus  string   `gorm:"size:20;not null;index"`
	ConfidenceScore   float64  `gorm:"type:decimal(5,2);not null"`
	IsPublished       bool     `gorm:"not null;index"`
	IsFeatured        bool     `gorm:"not null"`
	WatchCount        int      `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Content) TableName() string { return "contents" }

func (m *Content) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Genre is a classification tag.
type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Genre) TableName() string { return "genres" }

func (m *Genre) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ContentGenre joins contents and genres.
type ContentGenre struct {
	ContentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	GenreID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (ContentGenre) TableName() string { return "content_genres" }

// Season of a series.
type Season struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_season_content_number,priority:1"`
	SeasonNumber int       `gorm:"not null;uniqueIndex:idx_season_content_number,priority:2"`
	Title        string    `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Season) TableName() string { return "seasons" }

func (m *Season) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Episode of a season.
type Episode struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeasonID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_episode_season_number,priority:1"`
	EpisodeNumber int       `gorm:"not null;uniqueIndex:idx_episode_season_number,priority:2"`
	ContentID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"size:255"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Episode) TableName() string { return "episodes" }

func (m *Episode) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SourceLink ties a content or episode row to a file on a source.
type SourceLink struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LinkableType   string    `gorm:"size:20;not null;uniqueIndex:idx_link_unit_source_path,priority:1"`
	LinkableID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_link_unit_source_path,priority:2"`
	SourceID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_link_unit_source_path,priority:3;index"`
	FilePath       string    `gorm:"size:2048;not null;uniqueIndex:idx_link_unit_source_path,priority:4"`
	Quality        string    `gorm:"size:20"`
	FileSize       *int64
	CodecInfo      string `gorm:"size:50"`
	PartNumber     *int
	SubtitlePaths  []string `gorm:"serializer:json;type:text"`
	Status         string   `gorm:"size:20;not null"`
	LastVerifiedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SourceLink) TableName() string { return "source_links" }

func (m *SourceLink) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SourceScanLog is one pipeline pass over a source.
type SourceScanLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceID     uuid.UUID `gorm:"type:uuid;not null;index:idx_scan_log_lookup,priority:1"`
	Phase        string    `gorm:"size:20;not null;index:idx_scan_log_lookup,priority:2"`
	Status       string    `gorm:"size:20;not null"`
	ItemsFound   int       `gorm:"not null"`
	ItemsMatched int       `gorm:"not null"`
	ItemsFailed  int       `gorm:"not null"`
	ErrorLog     string    `gorm:"type:text"`
	StartedAt    time.Time `gorm:"not null;index:idx_scan_log_lookup,priority:3"`
	CompletedAt  *time.Time
}

func (SourceScanLog) TableName() string { return "source_scan_logs" }

func (m *SourceScanLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AllModels lists every table owned by the catalog, in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&Source{},
		&ShadowContentSource{},
		&Content{},
		&Genre{},
		&ContentGenre{},
		&Season{},
		&Episode{},
		&SourceLink{},
		&SourceScanLog{},
	}
}
