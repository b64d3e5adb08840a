package testutil

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

// CreateTestSource creates an active http_index source.
func CreateTestSource(name string) *domain.Source {
	return &domain.Source{
		Name:        name,
		BaseURL:     fmt.Sprintf("http://%s.local/", strings.ToLower(name)),
		ScraperType: "http_index",
		Config:      map[string]string{},
		IsActive:    true,
		HealthScore: 100,
		Priority:    1,
	}
}

// CreateTestShadowEntry creates a pending shadow entry for filename under /media.
func CreateTestShadowEntry(sourceID uuid.UUID, batchID, filename string) *domain.ShadowEntry {
	return &domain.ShadowEntry{
		SourceID:      sourceID,
		RawFilename:   filename,
		FilePath:      "/media/" + filename,
		FileExtension: domain.ExtractExtension(filename),
		ScanBatchID:   batchID,
		Status:        domain.StatusPending,
	}
}

// CreateTestMetadata creates a TMDb-style match for a movie.
func CreateTestMetadata(tmdbID int64, title string, year int) *domain.Metadata {
	rating := 8.4
	runtime := 148
	return &domain.Metadata{
		Provider:      "tmdb",
		TMDbID:        &tmdbID,
		IMDbID:        fmt.Sprintf("tt%07d", tmdbID),
		Title:         title,
		OriginalTitle: title,
		Year:          &year,
		Overview:      title + " overview",
		Rating:        &rating,
		VoteCount:     1000,
		Runtime:       &runtime,
		Genres:        []string{"Action", "Science Fiction"},
		Cast: []domain.CastMember{
			{Name: "Lead Actor", Character: "Hero"},
		},
		Director: "Some Director",
	}
}
