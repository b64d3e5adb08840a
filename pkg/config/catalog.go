package config

import (
	"errors"
	"fmt"
	"time"
)

// CatalogConfig extends BaseConfig with the enrichment pipeline settings.
type CatalogConfig struct {
	// squash is read by the unmarshaller, flatten by the defaults provider.
	BaseConfig `koanf:",squash,flatten"`
	Matching   MatchingSettings   `koanf:"matching"`
	Parser     ParserSettings     `koanf:"parser"`
	Collector  CollectorSettings  `koanf:"collector"`
	Metadata   MetadataSettings   `koanf:"metadata"`
	Enrichment EnrichmentSettings `koanf:"enrichment"`
}

// MatchingSettings holds the similarity thresholds, both in percent.
type MatchingSettings struct {
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`
	FuzzyThreshold      float64 `koanf:"fuzzy_threshold"`
}

// ParserSettings holds the quality score point tables.
type ParserSettings struct {
	QualityScores map[string]int `koanf:"quality_scores"`
	SourceBonus   map[string]int `koanf:"source_bonus"`
}

// CollectorSettings controls source crawling.
type CollectorSettings struct {
	ValidExtensions    []string      `koanf:"valid_extensions"`
	SubtitleExtensions []string      `koanf:"subtitle_extensions"`
	InsertChunkSize    int           `koanf:"insert_chunk_size"`
	MaxConcurrentScans int           `koanf:"max_concurrent_scans"`
	HTTPTimeout        time.Duration `koanf:"http_timeout"`
}

// MetadataSettings configures the external catalogues.
type MetadataSettings struct {
	TMDb TMDbSettings `koanf:"tmdb"`
	OMDb OMDbSettings `koanf:"omdb"`
}

// TMDbSettings configures the primary provider. An empty API key disables it.
type TMDbSettings struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	ImageBaseURL string        `koanf:"image_base_url"`
	RateLimit    float64       `koanf:"rate_limit"` // requests per second
	Timeout      time.Duration `koanf:"timeout"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryDelay   time.Duration `koanf:"retry_delay"`
	Language     string        `koanf:"language"`
}

// OMDbSettings configures the fallback provider. An empty API key disables it.
type OMDbSettings struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// EnrichmentSettings configures the orchestrator's shared state.
type EnrichmentSettings struct {
	RateCounterTTL time.Duration `koanf:"rate_counter_ttl"`
	CacheDriver    string        `koanf:"cache_driver"`  // memory, redis
	BatchTimeout   time.Duration `koanf:"batch_timeout"` // zero runs a batch to completion
}

// Validate validates the catalog configuration
func (c *CatalogConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if c.Matching.ConfidenceThreshold < 0 || c.Matching.ConfidenceThreshold > 100 {
		return fmt.Errorf("confidence threshold must be within 0..100, got %v", c.Matching.ConfidenceThreshold)
	}
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be within 0..100, got %v", c.Matching.FuzzyThreshold)
	}
	if len(c.Collector.ValidExtensions) == 0 {
		return errors.New("at least one valid video extension is required")
	}
	if c.Collector.InsertChunkSize < 1 {
		return errors.New("insert chunk size must be at least 1")
	}
	if c.Collector.MaxConcurrentScans < 1 {
		return errors.New("max concurrent scans must be at least 1")
	}
	if c.Metadata.TMDb.RateLimit <= 0 {
		return errors.New("tmdb rate limit must be positive")
	}
	switch c.Enrichment.CacheDriver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported enrichment cache driver: %q", c.Enrichment.CacheDriver)
	}
	return nil
}

// GetDefaultCatalogConfig returns default catalog configuration
func GetDefaultCatalogConfig() *CatalogConfig {
	base := GetDefaults()
	base.Service.Name = "catalogd"

	return &CatalogConfig{
		BaseConfig: *base,
		Matching: MatchingSettings{
			ConfidenceThreshold: DefaultConfidenceThreshold,
			FuzzyThreshold:      DefaultFuzzyThreshold,
		},
		Parser: ParserSettings{
			QualityScores: map[string]int{
				"2160p": 40, "4k": 40, "1080p": 30, "720p": 20, "480p": 10,
			},
			SourceBonus: map[string]int{
				"imax": 20, "bluray": 18, "brrip": 17, "web-dl": 16,
				"webrip": 15, "hdrip": 14, "hdtv": 13, "dvdrip": 12,
			},
		},
		Collector: CollectorSettings{
			ValidExtensions:    []string{"mp4", "mkv", "avi", "m3u8"},
			SubtitleExtensions: []string{"srt", "vtt", "ass", "sub"},
			InsertChunkSize:    DefaultInsertChunkSize,
			MaxConcurrentScans: DefaultMaxConcurrentScans,
			HTTPTimeout:        DefaultHTTPTimeout,
		},
		Metadata: MetadataSettings{
			TMDb: TMDbSettings{
				BaseURL:      "https://api.themoviedb.org/3",
				ImageBaseURL: "https://image.tmdb.org/t/p",
				RateLimit:    DefaultTMDbRateLimit,
				Timeout:      DefaultProviderTimeout,
				MaxRetries:   DefaultMaxRetries,
				RetryDelay:   DefaultRetryDelay,
				Language:     "en-US",
			},
			OMDb: OMDbSettings{
				BaseURL: "https://www.omdbapi.com",
				Timeout: DefaultProviderTimeout,
			},
		},
		Enrichment: EnrichmentSettings{
			RateCounterTTL: DefaultRateCounterTTL,
			CacheDriver:    "memory",
		},
	}
}
