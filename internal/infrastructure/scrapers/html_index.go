package scrapers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const (
	defaultMaxDepth = 3
	defaultMaxFiles = 5000
	userAgent       = "Mozilla/5.0 (compatible; catalogd)"
)

// HTMLIndexScraper walks HTTP directory listings (h5ai, Apache and nginx
// autoindex). Links ending in "/" are followed as directories when they
// descend from the current one; every other link is a file.
//
// Source config keys: roots (comma separated paths under base_url),
// max_depth, max_files, marker (substring TestConnection expects in the page).
type HTMLIndexScraper struct {
	source   domain.Source
	base     *url.URL
	roots    []string
	maxDepth int
	maxFiles int
	marker   string
	client   *http.Client
	logger   interfaces.Logger
}

// NewHTMLIndexScraper creates a directory-listing scraper for source.
func NewHTMLIndexScraper(source domain.Source, client *http.Client, logger interfaces.Logger) (*HTMLIndexScraper, error) {
	base, err := url.Parse(strings.TrimSpace(source.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", source.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	maxDepth, err := configInt(source, "max_depth", defaultMaxDepth)
	if err != nil {
		return nil, err
	}
	maxFiles, err := configInt(source, "max_files", defaultMaxFiles)
	if err != nil {
		return nil, err
	}

	roots := configList(source, "roots")
	if len(roots) == 0 {
		roots = []string{base.String()}
	}

	return &HTMLIndexScraper{
		source:   source,
		base:     base,
		roots:    roots,
		maxDepth: maxDepth,
		maxFiles: maxFiles,
		marker:   configString(source, "marker", ""),
		client:   client,
		logger: logger.WithFields(
			interfaces.String("scraper", "http_index"),
			interfaces.String("source", source.Name)),
	}, nil
}

func (s *HTMLIndexScraper) Name() string {
	return s.source.Name + " (http index)"
}

func (s *HTMLIndexScraper) TestConnection(ctx context.Context) error {
	doc, err := s.fetch(ctx, s.base)
	if err != nil {
		return err
	}
	if s.marker != "" && !strings.Contains(strings.ToLower(doc.Text()), strings.ToLower(s.marker)) {
		return fmt.Errorf("listing at %s does not look like %s", s.base, s.marker)
	}
	return nil
}

type crawlState struct {
	files   []File
	visited map[string]struct{}
}

func (s *HTMLIndexScraper) Crawl(ctx context.Context) ([]File, error) {
	state := &crawlState{visited: make(map[string]struct{})}

	for _, root := range s.roots {
		rootURL, err := s.base.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("invalid root %q: %w", root, err)
		}
		if !strings.HasSuffix(rootURL.Path, "/") {
			rootURL.Path += "/"
		}
		if err := s.crawlDir(ctx, rootURL, 0, state); err != nil {
			return state.files, err
		}
		if s.full(state) {
			break
		}
	}

	s.logger.Info("Crawl complete", interfaces.Int("found", len(state.files)))
	return state.files, nil
}

func (s *HTMLIndexScraper) crawlDir(ctx context.Context, dir *url.URL, depth int, state *crawlState) error {
	if depth > s.maxDepth || s.full(state) {
		return nil
	}
	if _, seen := state.visited[dir.String()]; seen {
		return nil
	}
	state.visited[dir.String()] = struct{}{}

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := s.fetch(ctx, dir)
	if err != nil {
		// The root must be reachable; a broken subdirectory is skipped.
		if depth == 0 {
			return err
		}
		s.logger.Warn("Directory crawl failed",
			interfaces.String("url", dir.String()),
			interfaces.Error(err))
		return nil
	}

	var subdirs []*url.URL
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		link, ok := s.resolve(dir, href)
		if !ok {
			return true
		}

		if strings.HasSuffix(link.Path, "/") {
			if descends(dir, link) {
				subdirs = append(subdirs, link)
			}
			return true
		}

		state.files = append(state.files, newFile(link.String(), nil))
		return !s.full(state)
	})

	for _, sub := range subdirs {
		if err := s.crawlDir(ctx, sub, depth+1, state); err != nil {
			return err
		}
	}
	return nil
}

// resolve makes href absolute and filters out sorting links, fragments,
// foreign hosts and h5ai assets.
func (s *HTMLIndexScraper) resolve(dir *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return nil, false
	}
	link, err := dir.Parse(href)
	if err != nil {
		return nil, false
	}
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil, false
	}
	if link.Host != s.base.Host || strings.Contains(link.Path, "/_h5ai") {
		return nil, false
	}
	link.RawQuery = ""
	link.Fragment = ""
	return link, true
}

func (s *HTMLIndexScraper) full(state *crawlState) bool {
	return s.maxFiles > 0 && len(state.files) >= s.maxFiles
}

func (s *HTMLIndexScraper) fetch(ctx context.Context, target *url.URL) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, target)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", target, err)
	}
	return doc, nil
}

// descends reports whether link is strictly below dir.
func descends(dir, link *url.URL) bool {
	return len(link.Path) > len(dir.Path) && strings.HasPrefix(link.Path, dir.Path)
}
