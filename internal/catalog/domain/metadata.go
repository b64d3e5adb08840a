package domain

import (
	"context"
	"errors"
	"sync"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// MetadataQuery is what a provider is asked to identify.
type MetadataQuery struct {
	Title string
	Year  *int
	Kind  ContentKind
}

// QueryFor builds a provider query from a parsed filename.
func QueryFor(p *ParsedFilename) MetadataQuery {
	return MetadataQuery{Title: p.Title, Year: p.Year, Kind: p.Kind}
}

// Metadata is a provider-neutral description of a matched title. Image fields
// hold absolute URLs.
type Metadata struct {
	Provider          string
	TMDbID            *int64
	IMDbID            string
	Title             string
	OriginalTitle     string
	Year              *int
	Overview          string
	Rating            *float64
	VoteCount         int
	Runtime           *int
	PosterURL         string
	BackdropURL       string
	Cast              []CastMember
	Director          string
	Genres            []string
	AlternativeTitles []string
	TrailerURL        string
	Language          string
}

// MetadataProvider is one external catalogue. Search returns (nil, nil) when
// the provider has no hit; errors are reserved for transport or decode failures.
type MetadataProvider interface {
	Name() string
	Search(ctx context.Context, query MetadataQuery) (*Metadata, error)
}

// MetadataFetcher asks providers in registration order and returns the first hit.
// Provider errors are logged and treated as a miss.
type MetadataFetcher struct {
	providers []MetadataProvider
	mu        sync.RWMutex
	logger    interfaces.Logger
}

// NewMetadataFetcher creates a fetcher over providers, primary first.
func NewMetadataFetcher(logger interfaces.Logger, providers ...MetadataProvider) *MetadataFetcher {
	f := &MetadataFetcher{logger: logger}
	for _, p := range providers {
		f.RegisterProvider(p)
	}
	return f
}

// RegisterProvider appends p, or replaces a provider with the same name in place.
func (f *MetadataFetcher) RegisterProvider(p MetadataProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.providers {
		if existing.Name() == p.Name() {
			f.providers[i] = p
			return
		}
	}
	f.providers = append(f.providers, p)
	f.logger.Debug("Registered metadata provider", interfaces.String("provider", p.Name()))
}

// Providers returns a snapshot of the chain.
func (f *MetadataFetcher) Providers() []MetadataProvider {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]MetadataProvider, len(f.providers))
	copy(out, f.providers)
	return out
}

// Fetch returns ErrNoMatch when every provider misses or fails, and the
// context error if ctx ends mid-chain.
func (f *MetadataFetcher) Fetch(ctx context.Context, query MetadataQuery) (*Metadata, error) {
	for _, p := range f.Providers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		md, err := p.Search(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
			}
			f.logger.Warn("Metadata provider failed",
				interfaces.String("provider", p.Name()),
				interfaces.String("title", query.Title),
				interfaces.Error(err))
			continue
		}
		if md != nil {
			if md.Provider == "" {
				md.Provider = p.Name()
			}
			return md, nil
		}
	}
	return nil, ErrNoMatch
}
