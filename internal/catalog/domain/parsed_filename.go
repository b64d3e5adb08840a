package domain

// ParsedFilename is the structured reading of one release filename. It is
// never persisted.
type ParsedFilename struct {
	Title        string      `json:"title"`
	Year         *int        `json:"year"`
	Quality      string      `json:"quality,omitempty"`
	Kind         ContentKind `json:"type"`
	Season       *int        `json:"season"`
	Episode      *int        `json:"episode"`
	Codec        string      `json:"codec,omitempty"`
	SourceType   string      `json:"source_type,omitempty"`
	QualityScore int         `json:"quality_score"`
	PartNumber   *int        `json:"part_number"`
}

func (p *ParsedFilename) IsSeries() bool { return p.Kind == KindSeries }
func (p *ParsedFilename) IsMovie() bool  { return p.Kind != KindSeries }

// HasEpisode reports whether the filename pins a concrete, non-zero season and episode.
func (p *ParsedFilename) HasEpisode() bool {
	return p.Season != nil && p.Episode != nil && *p.Season > 0 && *p.Episode > 0
}
