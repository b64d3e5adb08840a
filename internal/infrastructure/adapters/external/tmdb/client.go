package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const (
	providerName = "tmdb"
	posterSize   = "w500"
	backdropSize = "original"
	castLimit    = 10

	detailSections = "credits,videos,alternative_titles,external_ids"
)

// Config holds TMDb client settings.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// Client is the primary metadata provider. It searches by title, takes the
// first hit and fetches its details.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     interfaces.Logger
}

// NewClient creates a new TMDb client. limiter should be SharedLimiter so the
// upstream limit holds across batches.
func NewClient(cfg Config, httpClient *http.Client, limiter *rate.Limiter, logger interfaces.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger.WithFields(interfaces.String("component", "tmdb")),
	}
}

// Name implements domain.MetadataProvider.
func (c *Client) Name() string {
	return providerName
}

// Search finds the first TMDb hit for query and returns its normalized
// details. A missing API key or an empty result list is a miss.
func (c *Client) Search(ctx context.Context, query domain.MetadataQuery) (*domain.Metadata, error) {
	if c.cfg.APIKey == "" {
		c.logger.Warn("TMDb API key not configured")
		return nil, nil
	}

	kind := "movie"
	params := url.Values{"query": {query.Title}}
	if query.Kind == domain.KindSeries {
		kind = "tv"
	} else if query.Year != nil {
		params.Set("year", strconv.Itoa(*query.Year))
	}

	var found searchResponse
	if err := c.get(ctx, "/search/"+kind, params, &found); err != nil {
		return nil, fmt.Errorf("search %s %q: %w", kind, query.Title, err)
	}
	if len(found.Results) == 0 {
		return nil, nil
	}

	hit := found.Results[0]
	var details record
	err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, hit.ID), url.Values{"append_to_response": {detailSections}}, &details)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("TMDb details failed, using search hit",
			interfaces.Int64("tmdb_id", hit.ID),
			interfaces.Error(err))
		return c.normalize(&hit), nil
	}
	return c.normalize(&details), nil
}

// statusError is a non-2xx reply.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tmdb request failed: status %d", e.Code)
}

func isRetryable(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// get performs a rate-limited GET, retrying throttling and server errors with
// a linearly growing delay.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	params.Set("api_key", c.cfg.APIKey)
	if c.cfg.Language != "" {
		params.Set("language", c.cfg.Language)
	}
	target := strings.TrimRight(c.cfg.BaseURL, "/") + endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.fetch(ctx, target, v)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxRetries)),
		retry.RetryIf(isRetryable),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * c.cfg.RetryDelay
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying TMDb request",
				interfaces.String("endpoint", endpoint),
				interfaces.Uint("attempt", n+1),
				interfaces.Error(err))
		}),
	)
}

func (c *Client) fetch(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) imageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", strings.TrimRight(c.cfg.ImageBaseURL, "/"), size, path)
}

func (c *Client) normalize(r *record) *domain.Metadata {
	id := r.ID
	md := &domain.Metadata{
		Provider:      providerName,
		TMDbID:        &id,
		Title:         firstNonEmpty(r.Title, r.Name),
		OriginalTitle: firstNonEmpty(r.OriginalTitle, r.OriginalName),
		Year:          yearOf(firstNonEmpty(r.ReleaseDate, r.FirstAirDate)),
		Overview:      r.Overview,
		Rating:        r.VoteAverage,
		VoteCount:     r.VoteCount,
		Runtime:       r.Runtime,
		PosterURL:     c.imageURL(r.PosterPath, posterSize),
		BackdropURL:   c.imageURL(r.BackdropPath, backdropSize),
		IMDbID:        firstNonEmpty(r.IMDbID, r.ExternalIDs.IMDbID),
		Language:      r.OriginalLanguage,
	}

	if md.Runtime == nil && len(r.EpisodeRunTime) > 0 {
		rt := r.EpisodeRunTime[0]
		md.Runtime = &rt
	}

	for _, g := range r.Genres {
		md.Genres = append(md.Genres, g.Name)
	}

	for i, cm := range r.Credits.Cast {
		if i == castLimit {
			break
		}
		md.Cast = append(md.Cast, domain.CastMember{Name: cm.Name, Character: cm.Character})
	}

	for _, crew := range r.Credits.Crew {
		if crew.Job == "Director" {
			md.Director = crew.Name
			break
		}
	}
	if md.Director == "" && len(r.CreatedBy) > 0 {
		md.Director = r.CreatedBy[0].Name
	}

	for _, v := range r.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			md.TrailerURL = "https://www.youtube.com/watch?v=" + v.Key
			break
		}
	}

	alts := r.AlternativeTitles.Titles
	if len(alts) == 0 {
		alts = r.AlternativeTitles.Results
	}
	for _, a := range alts {
		md.AlternativeTitles = append(md.AlternativeTitles, a.Title)
	}

	return md
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// yearOf reads the leading year of a YYYY-MM-DD date.
func yearOf(date string) *int {
	if len(date) < 4 {
		return nil
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y == 0 {
		return nil
	}
	return &y
}
