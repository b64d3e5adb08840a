package domain

import (
	"path"
	"strings"
)

// ListedFile is one file reported by a scraper.
type ListedFile struct {
	Path      string
	Filename  string
	Extension string
	Size      *int64
}

// FileClassifier decides which listed files are videos or subtitles and pairs
// subtitles with videos by name similarity.
type FileClassifier struct {
	videoExt       map[string]struct{}
	subtitleExt    map[string]struct{}
	fuzzyThreshold float64
}

// NewFileClassifier builds a classifier. Extensions are matched case-insensitively.
func NewFileClassifier(videoExt, subtitleExt []string, fuzzyThreshold float64) *FileClassifier {
	return &FileClassifier{
		videoExt:       toSet(videoExt),
		subtitleExt:    toSet(subtitleExt),
		fuzzyThreshold: fuzzyThreshold,
	}
}

// DefaultFileClassifier uses mp4/mkv/avi/m3u8, srt/vtt/ass/sub and a 60% threshold.
func DefaultFileClassifier() *FileClassifier {
	return NewFileClassifier(
		[]string{"mp4", "mkv", "avi", "m3u8"},
		[]string{"srt", "vtt", "ass", "sub"},
		60,
	)
}

func (c *FileClassifier) IsVideo(ext string) bool {
	_, ok := c.videoExt[strings.ToLower(ext)]
	return ok
}

func (c *FileClassifier) IsSubtitle(ext string) bool {
	_, ok := c.subtitleExt[strings.ToLower(ext)]
	return ok
}

// FindSubtitles returns the paths of subtitle files in files whose base name
// is at least fuzzyThreshold percent similar to videoFilename. Only files from
// the same listing are considered.
func (c *FileClassifier) FindSubtitles(files []ListedFile, videoFilename string) []string {
	videoBase := strings.ToLower(stripExt(videoFilename))

	var matched []string
	for _, f := range files {
		if !c.IsSubtitle(f.Extension) {
			continue
		}
		name := f.Filename
		if name == "" {
			name = f.Path
		}
		subBase := strings.ToLower(stripExt(name))
		if SimilarityPercent(videoBase, subBase) >= c.fuzzyThreshold {
			matched = append(matched, f.Path)
		}
	}
	return matched
}

// ExtractExtension returns the lowercased extension of p without the dot.
func ExtractExtension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// DetectPart returns the CD/Part number embedded in a filename, if any.
func DetectPart(filename string) *int {
	return intFirstGroup(partRe, filename)
}

func stripExt(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(it), "."))] = struct{}{}
	}
	return set
}
