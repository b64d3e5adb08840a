package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Arrange
	cfg := config.GetDefaultCatalogConfig()

	// Act
	err := config.LoadServiceConfig("catalogd", "", cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "catalogd", cfg.Service.Name)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 80.0, cfg.Matching.ConfidenceThreshold)
	assert.Equal(t, 60.0, cfg.Matching.FuzzyThreshold)
	assert.Equal(t, 40, cfg.Parser.QualityScores["2160p"])
	assert.Equal(t, 18, cfg.Parser.SourceBonus["bluray"])
	assert.Equal(t, []string{"mp4", "mkv", "avi", "m3u8"}, cfg.Collector.ValidExtensions)
	assert.Equal(t, 3.0, cfg.Metadata.TMDb.RateLimit)
	assert.Equal(t, 300*time.Second, cfg.Enrichment.RateCounterTTL)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "catalogd.yaml")
	yaml := `
database:
  driver: sqlite
  path: /tmp/catalogd-test.db
matching:
  confidence_threshold: 70
metadata:
  tmdb:
    api_key: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CATALOGD_METADATA__TMDB__API_KEY", "from-env")
	t.Setenv("CATALOGD_COLLECTOR__INSERT_CHUNK_SIZE", "250")

	cfg := config.GetDefaultCatalogConfig()

	// Act
	err := config.LoadServiceConfig("catalogd", path, cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/catalogd-test.db", cfg.Database.Path)
	assert.Equal(t, 70.0, cfg.Matching.ConfidenceThreshold)
	assert.Equal(t, "from-env", cfg.Metadata.TMDb.APIKey)
	assert.Equal(t, 250, cfg.Collector.InsertChunkSize)
}

func TestCatalogConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.CatalogConfig)
	}{
		{"unknown database driver", func(c *config.CatalogConfig) { c.Database.Driver = "mysql" }},
		{"sqlite without path", func(c *config.CatalogConfig) { c.Database.Driver = "sqlite"; c.Database.Path = "" }},
		{"threshold above 100", func(c *config.CatalogConfig) { c.Matching.ConfidenceThreshold = 101 }},
		{"no video extensions", func(c *config.CatalogConfig) { c.Collector.ValidExtensions = nil }},
		{"zero chunk size", func(c *config.CatalogConfig) { c.Collector.InsertChunkSize = 0 }},
		{"zero rate limit", func(c *config.CatalogConfig) { c.Metadata.TMDb.RateLimit = 0 }},
		{"kafka without brokers", func(c *config.CatalogConfig) { c.Events.Driver = "kafka"; c.Events.Brokers = nil }},
		{"unknown cache driver", func(c *config.CatalogConfig) { c.Enrichment.CacheDriver = "memcached" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefaultCatalogConfig()
			tt.mutate(cfg)

			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, config.GetDefaultCatalogConfig().Validate())
}
