package scrapers

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// LocalScraper walks a mounted directory tree.
//
// Source config keys: path (defaults to base_url with any file:// prefix removed).
type LocalScraper struct {
	source domain.Source
	root   string
	fs     afero.Fs
	logger interfaces.Logger
}

// NewLocalScraper creates a filesystem scraper for source.
func NewLocalScraper(source domain.Source, fsys afero.Fs, logger interfaces.Logger) (*LocalScraper, error) {
	root := configString(source, "path", strings.TrimPrefix(source.BaseURL, "file://"))
	if root == "" {
		return nil, fmt.Errorf("local source %q has no path", source.Name)
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &LocalScraper{
		source: source,
		root:   filepath.Clean(root),
		fs:     fsys,
		logger: logger.WithFields(
			interfaces.String("scraper", "local"),
			interfaces.String("root", root)),
	}, nil
}

func (s *LocalScraper) Name() string {
	return s.source.Name + " (local)"
}

func (s *LocalScraper) TestConnection(ctx context.Context) error {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}

func (s *LocalScraper) Crawl(ctx context.Context) ([]File, error) {
	var files []File
	err := afero.Walk(s.fs, s.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			s.logger.Warn("Skipping unreadable path", interfaces.String("path", p), interfaces.Error(err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if p != s.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		size := info.Size()
		files = append(files, newFile(filepath.ToSlash(p), &size))
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to walk %s: %w", s.root, err)
	}

	s.logger.Info("Crawl complete", interfaces.Int("found", len(files)))
	return files, nil
}
