package repository

import (
	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

func sourceToDomain(m *Source) *domain.Source {
	return &domain.Source{
		ID:          m.ID,
		Name:        m.Name,
		BaseURL:     m.BaseURL,
		ScraperType: m.ScraperType,
		Config:      m.Config,
		IsActive:    m.IsActive,
		HealthScore: m.HealthScore,
		Priority:    m.Priority,
		LastScanAt:  m.LastScanAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func sourceFromDomain(s *domain.Source) *Source {
	return &Source{
		ID:          s.ID,
		Name:        s.Name,
		BaseURL:     s.BaseURL,
		ScraperType: s.ScraperType,
		Config:      s.Config,
		IsActive:    s.IsActive,
		HealthScore: s.HealthScore,
		Priority:    s.Priority,
		LastScanAt:  s.LastScanAt,
	}
}

func shadowToDomain(m *ShadowContentSource) *domain.ShadowEntry {
	return &domain.ShadowEntry{
		ID:            m.ID,
		SourceID:      m.SourceID,
		RawFilename:   m.RawFilename,
		FilePath:      m.FilePath,
		FileExtension: m.FileExtension,
		FileSize:      m.FileSize,
		SubtitlePaths: m.SubtitlePaths,
		ScanBatchID:   m.ScanBatchID,
		Status:        domain.EnrichmentStatus(m.EnrichmentStatus),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func shadowFromDomain(e *domain.ShadowEntry) *ShadowContentSource {
	status := e.Status
	if status == "" {
		status = domain.StatusPending
	}
	return &ShadowContentSource{
		ID:               e.ID,
		SourceID:         e.SourceID,
		RawFilename:      e.RawFilename,
		FilePath:         e.FilePath,
		FileExtension:    e.FileExtension,
		FileSize:         e.FileSize,
		SubtitlePaths:    e.SubtitlePaths,
		ScanBatchID:      e.ScanBatchID,
		EnrichmentStatus: string(status),
	}
}

func contentToDomain(m *Content, genres []Genre) *domain.CatalogEntry {
	entry := &domain.CatalogEntry{
		ID:                m.ID,
		TMDbID:            m.TMDbID,
		IMDbID:            m.IMDbID,
		Kind:              domain.ContentKind(m.Type),
		Title:             m.Title,
		OriginalTitle:     m.OriginalTitle,
		Year:              m.Year,
		Description:       m.Description,
		PosterURL:         m.Poster,
		BackdropURL:       m.Backdrop,
		Cast:              m.Cast,
		Director:          m.Director,
		Rating:            m.Rating,
		VoteCount:         m.VoteCount,
		Runtime:           m.Runtime,
		TrailerURL:        m.TrailerURL,
		AlternativeTitles: m.AlternativeTitles,
		Language:          m.Language,
		EnrichmentStatus:  domain.CatalogStatus(m.EnrichmentStatus),
		ConfidenceScore:   m.ConfidenceScore,
		IsPublished:       m.IsPublished,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, g := range genres {
		entry.Genres = append(entry.Genres, domain.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	return entry
}

// applyContent copies the enrichment-owned columns of e onto m. Counters and
// editorial flags (featured, watch count) are left alone.
func applyContent(m *Content, e *domain.CatalogEntry) {
	m.TMDbID = e.TMDbID
	m.IMDbID = e.IMDbID
	m.Type = string(e.Kind)
	m.Title = e.Title
	m.OriginalTitle = e.OriginalTitle
	m.Year = e.Year
	m.Description = e.Description
	m.Poster = e.PosterURL
	m.Backdrop = e.BackdropURL
	m.Cast = e.Cast
	m.Director = e.Director
	m.Rating = e.Rating
	m.VoteCount = e.VoteCount
	m.Runtime = e.Runtime
	m.TrailerURL = e.TrailerURL
	m.AlternativeTitles = e.AlternativeTitles
	m.Language = e.Language
	m.EnrichmentStatus = string(e.EnrichmentStatus)
	m.ConfidenceScore = e.ConfidenceScore
	m.IsPublished = e.IsPublished
}

func seasonToDomain(m *Season) *domain.Season {
	return &domain.Season{ID: m.ID, ContentID: m.ContentID, SeasonNumber: m.SeasonNumber, Title: m.Title}
}

func episodeToDomain(m *Episode) *domain.Episode {
	return &domain.Episode{
		ID:            m.ID,
		SeasonID:      m.SeasonID,
		ContentID:     m.ContentID,
		EpisodeNumber: m.EpisodeNumber,
		Title:         m.Title,
	}
}

func linkToDomain(m *SourceLink) *domain.SourceLink {
	return &domain.SourceLink{
		ID:             m.ID,
		LinkableType:   domain.LinkableType(m.LinkableType),
		LinkableID:     m.LinkableID,
		SourceID:       m.SourceID,
		FilePath:       m.FilePath,
		Quality:        m.Quality,
		FileSize:       m.FileSize,
		CodecInfo:      m.CodecInfo,
		PartNumber:     m.PartNumber,
		SubtitlePaths:  m.SubtitlePaths,
		Status:         domain.LinkStatus(m.Status),
		LastVerifiedAt: m.LastVerifiedAt,
	}
}

func linkFromDomain(l *domain.SourceLink) *SourceLink {
	return &SourceLink{
		ID:             l.ID,
		LinkableType:   string(l.LinkableType),
		LinkableID:     l.LinkableID,
		SourceID:       l.SourceID,
		FilePath:       l.FilePath,
		Quality:        l.Quality,
		FileSize:       l.FileSize,
		CodecInfo:      l.CodecInfo,
		PartNumber:     l.PartNumber,
		SubtitlePaths:  l.SubtitlePaths,
		Status:         string(l.Status),
		LastVerifiedAt: l.LastVerifiedAt,
	}
}

func scanLogToDomain(m *SourceScanLog) *domain.ScanLog {
	return &domain.ScanLog{
		ID:           m.ID,
		SourceID:     m.SourceID,
		Phase:        domain.ScanPhase(m.Phase),
		Status:       domain.ScanStatus(m.Status),
		ItemsFound:   m.ItemsFound,
		ItemsMatched: m.ItemsMatched,
		ItemsFailed:  m.ItemsFailed,
		ErrorLog:     m.ErrorLog,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
}

func scanLogFromDomain(l *domain.ScanLog) *SourceScanLog {
	return &SourceScanLog{
		ID:           l.ID,
		SourceID:     l.SourceID,
		Phase:        string(l.Phase),
		Status:       string(l.Status),
		ItemsFound:   l.ItemsFound,
		ItemsMatched: l.ItemsMatched,
		ItemsFailed:  l.ItemsFailed,
		ErrorLog:     l.ErrorLog,
		StartedAt:    l.StartedAt,
		CompletedAt:  l.CompletedAt,
	}
}
