package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const defaultMaxPages = 100

// JSONAPIScraper reads file listings from a JSON endpoint. The body is either
// an array of items or an object holding the items under items_key with an
// optional "next" URL for the following page.
//
// Item fields: path (required, absolute or relative to base_url), name, size.
// Source config keys: endpoint, items_key (default "files"), token, max_pages.
type JSONAPIScraper struct {
	source   domain.Source
	base     *url.URL
	endpoint string
	itemsKey string
	token    string
	maxPages int
	client   *http.Client
	logger   interfaces.Logger
}

type jsonItem struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size *int64 `json:"size"`
}

// NewJSONAPIScraper creates a JSON listing scraper for source.
func NewJSONAPIScraper(source domain.Source, client *http.Client, logger interfaces.Logger) (*JSONAPIScraper, error) {
	base, err := url.Parse(strings.TrimSpace(source.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", source.BaseURL)
	}
	maxPages, err := configInt(source, "max_pages", defaultMaxPages)
	if err != nil {
		return nil, err
	}

	return &JSONAPIScraper{
		source:   source,
		base:     base,
		endpoint: configString(source, "endpoint", ""),
		itemsKey: configString(source, "items_key", "files"),
		token:    configString(source, "token", ""),
		maxPages: maxPages,
		client:   client,
		logger: logger.WithFields(
			interfaces.String("scraper", "json_api"),
			interfaces.String("source", source.Name)),
	}, nil
}

func (s *JSONAPIScraper) Name() string {
	return s.source.Name + " (json api)"
}

func (s *JSONAPIScraper) TestConnection(ctx context.Context) error {
	start, err := s.base.Parse(s.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", s.endpoint, err)
	}
	_, _, err = s.fetchPage(ctx, start.String())
	return err
}

func (s *JSONAPIScraper) Crawl(ctx context.Context) ([]File, error) {
	start, err := s.base.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", s.endpoint, err)
	}

	var files []File
	next := start.String()
	for page := 0; next != "" && page < s.maxPages; page++ {
		items, nextURL, err := s.fetchPage(ctx, next)
		if err != nil {
			return files, err
		}

		for _, item := range items {
			if item.Path == "" {
				continue
			}
			ref, err := s.base.Parse(item.Path)
			if err != nil {
				s.logger.Warn("Skipping item with invalid path", interfaces.String("path", item.Path))
				continue
			}
			f := newFile(ref.String(), item.Size)
			if item.Name != "" {
				f.Filename = item.Name
				f.Extension = domain.ExtractExtension(item.Name)
			}
			files = append(files, f)
		}
		next = nextURL
	}

	s.logger.Info("Crawl complete", interfaces.Int("found", len(files)))
	return files, nil
}

func (s *JSONAPIScraper) fetchPage(ctx context.Context, target string) ([]jsonItem, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, target)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", target, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []jsonItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, "", fmt.Errorf("failed to decode items: %w", err)
		}
		return items, "", nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, "", fmt.Errorf("failed to decode envelope: %w", err)
	}

	var items []jsonItem
	if body, ok := envelope[s.itemsKey]; ok {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, "", fmt.Errorf("failed to decode %s: %w", s.itemsKey, err)
		}
	}

	var next string
	if body, ok := envelope["next"]; ok {
		_ = json.Unmarshal(body, &next)
	}
	if next != "" {
		nextURL, err := s.base.Parse(next)
		if err != nil {
			return nil, "", fmt.Errorf("invalid next url %q: %w", next, err)
		}
		next = nextURL.String()
	}
	return items, next, nil
}
