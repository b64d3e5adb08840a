package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// MockMetadataProvider is a mock implementation of domain.MetadataProvider.
type MockMetadataProvider struct {
	mock.Mock
	name string
}

func NewMockMetadataProvider(name string) *MockMetadataProvider {
	return &MockMetadataProvider{name: name}
}

func (m *MockMetadataProvider) Name() string {
	return m.name
}

func (m *MockMetadataProvider) Search(ctx context.Context, query domain.MetadataQuery) (*domain.Metadata, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Metadata), args.Error(1)
}

// titleQuery matches a provider query by title.
func titleQuery(title string) interface{} {
	return mock.MatchedBy(func(q domain.MetadataQuery) bool { return q.Title == title })
}

// stubScraper returns a fixed listing.
type stubScraper struct {
	files []domain.ListedFile
	err   error
}

func (s *stubScraper) Name() string { return "stub" }

func (s *stubScraper) TestConnection(ctx context.Context) error { return s.err }

func (s *stubScraper) Crawl(ctx context.Context) ([]domain.ListedFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.ListedFile(nil), s.files...), nil
}

// stubResolver hands out scrapers by source name.
type stubResolver struct {
	scrapers map[string]*stubScraper
}

func (r *stubResolver) Build(source domain.Source) (domain.Scraper, error) {
	s, ok := r.scrapers[source.Name]
	if !ok {
		return nil, domain.ErrUnknownScraper
	}
	return s, nil
}

// recordingHandler keeps every event it receives.
type recordingHandler struct {
	eventType string
	mu        sync.Mutex
	events    []interfaces.Event
}

func (h *recordingHandler) Handle(ctx context.Context, event interfaces.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) EventType() string { return h.eventType }

func (h *recordingHandler) Events() []interfaces.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]interfaces.Event(nil), h.events...)
}

func listed(path string, size int64) domain.ListedFile {
	name := path[strings.LastIndex(path, "/")+1:]
	return domain.ListedFile{
		Path:      path,
		Filename:  name,
		Extension: domain.ExtractExtension(name),
		Size:      &size,
	}
}

