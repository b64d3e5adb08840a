package domain

import (
	"math"
	"strings"
)

// SimilarText counts the bytes a and b have in common using the recursive
// longest-common-substring walk (Oliver, 1993): take the first longest
// common run, then recurse on the pieces left and right of it.
// The result depends on argument order.
func SimilarText(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	pos1, pos2, longest := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > longest {
				pos1, pos2, longest = i, j, k
			}
		}
	}
	if longest == 0 {
		return 0
	}

	return longest +
		SimilarText(a[:pos1], b[:pos2]) +
		SimilarText(a[pos1+longest:], b[pos2+longest:])
}

// SimilarityPercent is 2*SimilarText/(len(a)+len(b))*100, unrounded.
func SimilarityPercent(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return float64(SimilarText(a, b)) * 200.0 / float64(total)
}

// ConfidenceScore rates how well a matched title agrees with the parsed one,
// 0..100 rounded to two decimals. An empty matched title scores 0.
func ConfidenceScore(parsedTitle, matchedTitle string) float64 {
	if matchedTitle == "" {
		return 0
	}
	pct := SimilarityPercent(normalizeForScore(parsedTitle), normalizeForScore(matchedTitle))
	return math.Round(pct*100) / 100
}

// normalizeForScore lowercases ASCII only and trims whitespace and NUL bytes,
// leaving non-ASCII titles byte-for-byte intact.
func normalizeForScore(s string) string {
	s = strings.Trim(s, " \t\n\r\x00\x0B")
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
