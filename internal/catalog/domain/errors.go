package domain

import "errors"

var (
	// ErrEmptyTitle means the parser could not recover a title from the filename.
	ErrEmptyTitle = errors.New("parsed title is empty")

	// ErrNoMatch means no metadata provider recognised the title.
	ErrNoMatch = errors.New("no metadata match")

	// ErrUnknownScraper is returned for a source whose scraper type is not registered.
	ErrUnknownScraper = errors.New("unknown scraper type")

	// ErrSourceNotFound is returned when a source id does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrBatchNotFound is returned when a batch id has no entries.
	ErrBatchNotFound = errors.New("batch not found")
)
