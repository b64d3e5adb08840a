package domain

import "context"

// Scraper lists every file a source exposes.
type Scraper interface {
	Name() string
	TestConnection(ctx context.Context) error
	Crawl(ctx context.Context) ([]ListedFile, error)
}

// ScraperResolver picks the scraper for a source by its scraper type.
type ScraperResolver interface {
	Build(source Source) (Scraper, error)
}
