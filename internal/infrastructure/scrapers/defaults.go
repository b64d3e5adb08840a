package scrapers

import (
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

// Scraper type names.
const (
	TypeHTTPIndex = "http_index"
	TypeJSONAPI   = "json_api"
	TypeS3        = "s3"
	TypeLocal     = "local"
)

// ftpServerAliases are the BDIX FTP-over-HTTP server families, all of which
// serve plain directory listings.
var ftpServerAliases = []string{
	"dflix", "dhakaflix", "roarzone", "ftpbd", "circleftp", "iccftp", "ihub",
}

// Options carries the shared dependencies of the built-in scrapers.
type Options struct {
	HTTPClient *http.Client
	S3Client   S3ClientFactory
	Fs         afero.Fs
	Logger     interfaces.Logger
}

// NewDefaultRegistry registers every built-in scraper.
func NewDefaultRegistry(opts Options) *Registry {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}

	r := NewRegistry()

	// Registration into a fresh registry cannot collide.
	_ = r.Register(func(source domain.Source) (Scraper, error) {
		return NewHTMLIndexScraper(source, opts.HTTPClient, opts.Logger)
	}, append([]string{TypeHTTPIndex}, ftpServerAliases...)...)

	_ = r.Register(func(source domain.Source) (Scraper, error) {
		return NewJSONAPIScraper(source, opts.HTTPClient, opts.Logger)
	}, TypeJSONAPI)

	_ = r.Register(func(source domain.Source) (Scraper, error) {
		return NewS3Scraper(source, opts.S3Client, opts.Logger)
	}, TypeS3)

	_ = r.Register(func(source domain.Source) (Scraper, error) {
		return NewLocalScraper(source, opts.Fs, opts.Logger)
	}, TypeLocal)

	return r
}
