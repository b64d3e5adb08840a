package scrapers_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/scrapers"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

func TestLocalScraperWalksTree(t *testing.T) {
	// Arrange
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/media/Movies/Inception.2010.1080p.mkv", []byte("video"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/TV/Show.S01E01.mkv", []byte("ep"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/TV/Show.S01E01.srt", []byte("1"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/media/.trash/Old.mkv", []byte("x"), 0o644))

	scraper, err := scrapers.NewLocalScraper(domain.Source{
		Name:        "NAS",
		BaseURL:     "file:///srv/media",
		ScraperType: "local",
	}, fs, logger.NewNoop())
	require.NoError(t, err)

	// Act
	files, err := scraper.Crawl(context.Background())

	// Assert
	require.NoError(t, err)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{
		"/srv/media/Movies/Inception.2010.1080p.mkv",
		"/srv/media/TV/Show.S01E01.mkv",
		"/srv/media/TV/Show.S01E01.srt",
	}, paths)
	for _, f := range files {
		if f.Filename == "Inception.2010.1080p.mkv" {
			assert.Equal(t, int64(5), *f.Size)
			assert.Equal(t, "mkv", f.Extension)
		}
	}
}

func TestLocalScraperConnection(t *testing.T) {
	// Arrange
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/media", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/srv/file.mkv", []byte("x"), 0o644))

	ok, err := scrapers.NewLocalScraper(domain.Source{Config: map[string]string{"path": "/srv/media"}}, fs, logger.NewNoop())
	require.NoError(t, err)
	notDir, err := scrapers.NewLocalScraper(domain.Source{Config: map[string]string{"path": "/srv/file.mkv"}}, fs, logger.NewNoop())
	require.NoError(t, err)
	missing, err := scrapers.NewLocalScraper(domain.Source{Config: map[string]string{"path": "/nope"}}, fs, logger.NewNoop())
	require.NoError(t, err)

	// Act & Assert
	assert.NoError(t, ok.TestConnection(context.Background()))
	assert.Error(t, notDir.TestConnection(context.Background()))
	assert.Error(t, missing.TestConnection(context.Background()))
}

func TestLocalScraperRequiresPath(t *testing.T) {
	// Act
	_, err := scrapers.NewLocalScraper(domain.Source{Name: "NAS"}, afero.NewMemMapFs(), logger.NewNoop())

	// Assert
	assert.Error(t, err)
}
