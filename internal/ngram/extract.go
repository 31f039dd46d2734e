// Package ngram extracts boundary-marked character n-grams from text and
// normalizes their counts into per-length relative frequencies.
//
// Terms are maximal runs of word runes (Unicode letters, Unicode numbers and
// '_'), lower-cased before extraction. An n-gram touching the start of its
// term is prefixed with '$', one touching the end is suffixed with '$', so
// "$th", "th" and "he$" are distinct keys.
package ngram

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMaxLength is the n-gram length used when building profiles.
	DefaultMaxLength = 4

	// BoundaryMarker marks an n-gram that touches a term boundary.
	BoundaryMarker = '$'
)

// Counts is a raw profile: n-gram to number of occurrences.
type Counts map[string]int

// Frequencies is a normalized profile: n-gram to relative weight.
type Frequencies map[string]float64

// Stats reports what an extraction processed.
type Stats struct {
	Terms  int `json:"terms"`
	Ngrams int `json:"ngrams"`
}

// Extract returns the raw n-gram counts of text for lengths 1..maxLength.
// Empty text yields an empty profile.
func Extract(text string, maxLength int) Counts {
	counts, _ := ExtractStats(text, maxLength)
	return counts
}

// ExtractStats is Extract that also reports the number of terms and distinct
// n-grams processed.
func ExtractStats(text string, maxLength int) (Counts, Stats) {
	counts := make(Counts)
	var stats Stats
	if text == "" || maxLength < 1 {
		return counts, stats
	}

	// A Caser keeps state between calls and must not be shared.
	lower := cases.Lower(language.Und)
	for _, term := range Terms(text) {
		stats.Terms++
		addTerm(counts, []rune(lower.String(term)), maxLength)
	}
	stats.Ngrams = len(counts)

	return counts, stats
}

// Terms splits text on runs of non-word runes. Case is preserved.
func Terms(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// addTerm counts every window of min(len(term), maxLength) runes that
// overlaps term. Windows hanging over either end are truncated, not padded,
// so each rune is covered and the edge windows get boundary markers.
func addTerm(counts Counts, term []rune, maxLength int) {
	n := len(term)
	if n == 0 {
		return
	}
	width := min(n, maxLength)

	var b strings.Builder
	for s := 1 - width; s < n; s++ {
		start := max(s, 0)
		end := min(s+width, n)

		b.Reset()
		if start == 0 {
			b.WriteRune(BoundaryMarker)
		}
		b.WriteString(string(term[start:end]))
		if end == n {
			b.WriteRune(BoundaryMarker)
		}
		counts[b.String()]++
	}
}

// Length returns the rune length of an n-gram without its boundary markers.
func Length(ngram string) int {
	n := 0
	for _, r := range ngram {
		if r != BoundaryMarker {
			n++
		}
	}
	return n
}
