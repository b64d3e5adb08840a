package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

const (
	providerName = "omdb"
	notAvailable = "N/A"
	castLimit    = 10
)

var leadingDigits = regexp.MustCompile(`\d+`)

// Config holds OMDb client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is the fallback metadata provider. One title lookup returns an
// already complete record, so there is no details call and no rate gate.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewClient creates a new OMDb client.
func NewClient(cfg Config, httpClient *http.Client, logger interfaces.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.WithFields(interfaces.String("component", "omdb")),
	}
}

// Name implements domain.MetadataProvider.
func (c *Client) Name() string {
	return providerName
}

type response struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	IMDbID     string `json:"imdbID"`
}

// Search looks a title up by exact name and optional year.
func (c *Client) Search(ctx context.Context, query domain.MetadataQuery) (*domain.Metadata, error) {
	if c.cfg.APIKey == "" {
		c.logger.Warn("OMDb API key not configured")
		return nil, nil
	}

	params := url.Values{
		"apikey": {c.cfg.APIKey},
		"t":      {query.Title},
		"type":   {"movie"},
	}
	if query.Kind == domain.KindSeries {
		params.Set("type", "series")
	}
	if query.Year != nil {
		params.Set("y", strconv.Itoa(*query.Year))
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb request failed: status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if body.Response != "True" {
		c.logger.Debug("OMDb miss",
			interfaces.String("title", query.Title),
			interfaces.String("reason", body.Error))
		return nil, nil
	}

	return normalize(&body), nil
}

func normalize(r *response) *domain.Metadata {
	md := &domain.Metadata{
		Provider:  providerName,
		Title:     value(r.Title),
		IMDbID:    value(r.IMDbID),
		Overview:  value(r.Plot),
		PosterURL: value(r.Poster),
		Director:  value(r.Director),
		Year:      number(r.Year),
		Runtime:   number(r.Runtime),
		Genres:    list(r.Genre),
		VoteCount: votes(r.IMDbVotes),
	}

	if lang := list(r.Language); len(lang) > 0 {
		md.Language = lang[0]
	}
	if rating, err := strconv.ParseFloat(r.IMDbRating, 64); err == nil {
		md.Rating = &rating
	}
	for i, name := range list(r.Actors) {
		if i == castLimit {
			break
		}
		md.Cast = append(md.Cast, domain.CastMember{Name: name})
	}
	return md
}

// value drops OMDb's "N/A" placeholder.
func value(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

func list(s string) []string {
	s = value(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}

// number reads the first run of digits, so "148 min" is 148 and "2008–2013" is 2008.
func number(s string) *int {
	m := leadingDigits.FindString(value(s))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

func votes(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(value(s), ",", ""))
	if err != nil {
		return 0
	}
	return n
}
