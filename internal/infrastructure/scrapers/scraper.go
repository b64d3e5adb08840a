// Package scrapers harvests raw file listings from media sources. Each source
// family has one Scraper implementation selected by the source's scraper type.
package scrapers

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

// File is one entry of a crawl.
type File = domain.ListedFile

// Scraper lists every file a source exposes.
type Scraper = domain.Scraper

// Factory builds a scraper bound to one source.
type Factory func(source domain.Source) (Scraper, error)

// Registry maps scraper type strings to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under one or more type names.
func (r *Registry) Register(factory Factory, types ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range types {
		key := normalizeType(t)
		if key == "" {
			return fmt.Errorf("scraper type must not be empty")
		}
		if _, exists := r.factories[key]; exists {
			return fmt.Errorf("scraper type %q already registered", key)
		}
		r.factories[key] = factory
	}
	return nil
}

// Build resolves the scraper for source.ScraperType.
func (r *Registry) Build(source domain.Source) (Scraper, error) {
	r.mu.RLock()
	factory, ok := r.factories[normalizeType(source.ScraperType)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScraper, source.ScraperType)
	}
	return factory(source)
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// newFile builds a File from a path or URL. URL paths are unescaped.
func newFile(p string, size *int64) File {
	name := path.Base(p)
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		name = path.Base(u.Path)
	}
	return File{
		Path:      p,
		Filename:  name,
		Extension: domain.ExtractExtension(name),
		Size:      size,
	}
}

func configString(source domain.Source, key, fallback string) string {
	if v, ok := source.Config[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func configInt(source domain.Source, key string, fallback int) (int, error) {
	v := configString(source, key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func configList(source domain.Source, key string) []string {
	var out []string
	for _, item := range strings.Split(configString(source, key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
