package domain

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	seasonEpisodeRe = regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,2})`)

	// Go's \b treats '_' as a word character, so the year is bounded explicitly.
	yearRe    = regexp.MustCompile(`(?:^|[._\-\s])((?:19|20)\d{2})(?:$|[._\-\s])`)
	qualityRe = regexp.MustCompile(`(?i)\b(2160p|1080p|720p|480p|4k|uhd)\b`)
	codecRe   = regexp.MustCompile(`(?i)\b(x264|x265|h264|h265|hevc|avc|xvid)\b`)
	partRe    = regexp.MustCompile(`(?i)(?:cd|part|pt)[.\s_-]*(\d+)`)

	separatorRunRe = regexp.MustCompile(`[._-]+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// sourceTypePatterns is checked in order; the first hit wins.
var sourceTypePatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"imax", regexp.MustCompile(`(?i)\bimax\b`)},
	{"BluRay", regexp.MustCompile(`(?i)\b(blu[\s.-]?ray|brrip|bdrip)\b`)},
	{"WEB-DL", regexp.MustCompile(`(?i)\b(web[\s.-]?dl|webdl)\b`)},
	{"WebRip", regexp.MustCompile(`(?i)\bwebrip\b`)},
	{"HDRip", regexp.MustCompile(`(?i)\bhdrip\b`)},
	{"HDTV", regexp.MustCompile(`(?i)\bhdtv\b`)},
	{"DVDRip", regexp.MustCompile(`(?i)\bdvdrip\b`)},
}

// noiseTokens are dropped from titles that have neither a year nor an
// episode marker to anchor them.
var noiseTokens = map[string]struct{}{}

func init() {
	for _, t := range []string{
		"bluray", "brrip", "bdrip", "web-dl", "webdl", "webrip", "hdrip", "hdtv", "dvdrip", "dvdscr", "cam", "ts",
		"hdr", "sdr",
		"x264", "x265", "h264", "h265", "hevc", "avc", "xvid",
		"aac", "ac3", "dts", "flac", "mp3", "atmos", "ddp5", "ddp7", "dd5", "dd7", "5.1", "7.1",
		"yify", "yts", "rarbg", "etrg", "sparks", "geckos",
		"extended", "unrated", "directors", "cut", "remastered", "imax", "proper", "repack", "internal", "limited",
		"multi", "dual", "audio", "subbed", "dubbed",
	} {
		noiseTokens[t] = struct{}{}
	}
}

// ScoreTable maps lowercased resolution and source-type labels to ranking points.
type ScoreTable struct {
	Quality     map[string]int
	SourceBonus map[string]int
}

// DefaultScoreTable returns the stock ranking points.
func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		Quality: map[string]int{"4k": 40, "2160p": 40, "1080p": 30, "720p": 20, "480p": 10},
		SourceBonus: map[string]int{
			"imax": 20, "bluray": 18, "brrip": 17, "web-dl": 16,
			"webrip": 15, "hdrip": 14, "hdtv": 13, "dvdrip": 12,
		},
	}
}

// Score returns quality points plus source bonus. Unknown labels score 0.
func (t ScoreTable) Score(quality, sourceType string) int {
	score := 0
	if quality != "" {
		score += t.Quality[strings.ToLower(quality)]
	}
	if sourceType != "" {
		score += t.SourceBonus[strings.ToLower(sourceType)]
	}
	return score
}

// FilenameParser extracts title, year, and release attributes from scene-style filenames.
type FilenameParser struct {
	scores ScoreTable
	now    func() time.Time
}

// ParserOption configures a FilenameParser.
type ParserOption func(*FilenameParser)

// WithScoreTable overrides the ranking points.
func WithScoreTable(t ScoreTable) ParserOption {
	return func(p *FilenameParser) { p.scores = t }
}

// WithClock fixes "now" for the year plausibility window.
func WithClock(now func() time.Time) ParserOption {
	return func(p *FilenameParser) { p.now = now }
}

// NewFilenameParser creates a parser with the default score table.
func NewFilenameParser(opts ...ParserOption) *FilenameParser {
	p := &FilenameParser{scores: DefaultScoreTable(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse never fails; an empty Title is the caller's signal that the name was unusable.
func (p *FilenameParser) Parse(filename string) *ParsedFilename {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name := strings.TrimSuffix(base, path.Ext(base))

	out := &ParsedFilename{
		Kind:       KindMovie,
		Year:       p.extractYear(name),
		Quality:    lowerFirstGroup(qualityRe, name),
		Codec:      lowerFirstGroup(codecRe, name),
		SourceType: extractSourceType(name),
		PartNumber: intFirstGroup(partRe, name),
	}

	var raw string
	if m := seasonEpisodeRe.FindStringSubmatchIndex(name); m != nil {
		out.Kind = KindSeries
		season, _ := strconv.Atoi(name[m[2]:m[3]])
		episode, _ := strconv.Atoi(name[m[4]:m[5]])
		out.Season, out.Episode = &season, &episode
		raw = name[:m[0]]
	} else if out.Year != nil {
		raw = titleBeforeYear(name, *out.Year)
	} else {
		raw = stripNoiseTokens(name)
	}

	out.Title = CleanTitle(raw)
	out.QualityScore = p.scores.Score(out.Quality, out.SourceType)
	return out
}

// extractYear takes the first bounded year only; an implausible first year
// is not retried against later candidates.
func (p *FilenameParser) extractYear(name string) *int {
	m := yearRe.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	if year < 1900 || year > p.now().Year()+2 {
		return nil
	}
	return &year
}

func extractSourceType(name string) string {
	for _, sp := range sourceTypePatterns {
		if sp.re.MatchString(name) {
			return sp.label
		}
	}
	return ""
}

func titleBeforeYear(name string, year int) string {
	if pos := strings.Index(name, strconv.Itoa(year)); pos > 0 {
		return name[:pos]
	}
	return name
}

func stripNoiseTokens(name string) string {
	words := strings.Split(separatorRunRe.ReplaceAllString(name, " "), " ")
	kept := words[:0]
	for _, w := range words {
		if _, noise := noiseTokens[strings.ToLower(w)]; !noise {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// CleanTitle turns separator runs into single spaces and trims.
func CleanTitle(raw string) string {
	clean := separatorRunRe.ReplaceAllString(raw, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
}

func lowerFirstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

func intFirstGroup(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
