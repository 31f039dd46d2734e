package profile

import (
	"fmt"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

// Language is the reference profile of one language. It is immutable once
// constructed and safe for concurrent readers.
type Language struct {
	code      string
	ngrams    ngram.Frequencies
	maxLength int
	source    string
}

// NewLanguage wraps a normalized profile. The map is owned by the returned
// Language and must not be modified afterwards.
func NewLanguage(code string, freqs ngram.Frequencies, source string) (*Language, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: language code cannot be empty", ErrInvalidInput)
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("%w: profile %q has no n-grams", ErrInvalidInput, code)
	}
	return &Language{
		code:      code,
		ngrams:    freqs,
		maxLength: freqs.MaxLength(),
		source:    source,
	}, nil
}

// Code returns the language code, e.g. "en" or "zh_TC".
func (l *Language) Code() string { return l.code }

// Weight returns the normalized weight of an n-gram, or 0 if absent.
func (l *Language) Weight(ngram string) float64 { return l.ngrams[ngram] }

// Len returns the number of distinct n-grams.
func (l *Language) Len() int { return len(l.ngrams) }

// MaxLength returns the longest stripped n-gram length in the profile.
func (l *Language) MaxLength() int { return l.maxLength }

// Source is the file or cache the profile was loaded from.
func (l *Language) Source() string { return l.source }

// Ngrams returns a copy of the frequency table.
func (l *Language) Ngrams() ngram.Frequencies { return l.ngrams.Clone() }
