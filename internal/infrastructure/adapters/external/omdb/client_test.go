package omdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
	"github.com/narwhalmedia/catalogd/internal/infrastructure/adapters/external/omdb"
	"github.com/narwhalmedia/catalogd/pkg/logger"
)

func newClient(t *testing.T, apiKey string, handler http.HandlerFunc) *omdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return omdb.NewClient(omdb.Config{
		APIKey:  apiKey,
		BaseURL: server.URL,
		Timeout: time.Second,
	}, server.Client(), logger.NewNoop())
}

func TestSearchNormalizesResponse(t *testing.T) {
	// Arrange
	client := newClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("apikey"))
		assert.Equal(t, "Inception", q.Get("t"))
		assert.Equal(t, "movie", q.Get("type"))
		assert.Equal(t, "2010", q.Get("y"))
		w.Write([]byte(`{
			"Response": "True", "Title": "Inception", "Year": "2010",
			"Runtime": "148 min", "Genre": "Action, Adventure, Sci-Fi",
			"Director": "Christopher Nolan", "Actors": "Leonardo DiCaprio, Joseph Gordon-Levitt",
			"Plot": "A thief.", "Language": "English, Japanese", "Poster": "N/A",
			"imdbRating": "8.8", "imdbVotes": "2,500,000", "imdbID": "tt1375666"
		}`))
	})
	year := 2010

	// Act
	md, err := client.Search(context.Background(), domain.MetadataQuery{Title: "Inception", Year: &year, Kind: domain.KindMovie})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "omdb", md.Provider)
	assert.Nil(t, md.TMDbID)
	assert.Equal(t, "Inception", md.Title)
	assert.Equal(t, 2010, *md.Year)
	assert.Equal(t, 148, *md.Runtime)
	assert.Equal(t, []string{"Action", "Adventure", "Sci-Fi"}, md.Genres)
	assert.Equal(t, "Christopher Nolan", md.Director)
	assert.Len(t, md.Cast, 2)
	assert.Equal(t, "English", md.Language)
	assert.Empty(t, md.PosterURL)
	assert.InDelta(t, 8.8, *md.Rating, 0.001)
	assert.Equal(t, 2500000, md.VoteCount)
	assert.Equal(t, "tt1375666", md.IMDbID)
}

func TestSearchSeriesUsesSeriesType(t *testing.T) {
	// Arrange
	client := newClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "series", r.URL.Query().Get("type"))
		w.Write([]byte(`{"Response": "True", "Title": "Breaking Bad", "Year": "2008–2013", "imdbRating": "N/A"}`))
	})

	// Act
	md, err := client.Search(context.Background(), domain.MetadataQuery{Title: "Breaking Bad", Kind: domain.KindSeries})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, 2008, *md.Year)
	assert.Nil(t, md.Rating)
	assert.Nil(t, md.Runtime)
}

func TestSearchFalseResponseIsAMiss(t *testing.T) {
	// Arrange
	client := newClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})

	// Act
	md, err := client.Search(context.Background(), domain.MetadataQuery{Title: "Nope"})

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, md)
}

func TestSearchNon200IsAnError(t *testing.T) {
	// Arrange
	client := newClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Act
	md, err := client.Search(context.Background(), domain.MetadataQuery{Title: "Heat"})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, md)
}

func TestSearchWithoutAPIKeyIsAMiss(t *testing.T) {
	// Arrange
	called := false
	client := newClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	// Act
	md, err := client.Search(context.Background(), domain.MetadataQuery{Title: "Heat"})

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, md)
	assert.False(t, called)
}
