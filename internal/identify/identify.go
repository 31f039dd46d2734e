// Package identify scores text against the language profiles of a store
// and ranks the candidate languages.
package identify

import (
	"fmt"
	"math"
	"sort"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/profile"
)

// ErrInvalidInput is returned for empty text and invalid options.
var ErrInvalidInput = profile.ErrInvalidInput

// Score is the raw similarity of a text to one language.
type Score struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// Result is a ranked candidate with its share of the summed scores.
type Result struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
	Share    float64 `json:"share"`
}

// Options tune a single identification request.
type Options struct {
	Hint           string  // Language code presumed likely
	HintMultiplier float64 // Boost for the hinted language (0 = store default)
	Form           string  // Unicode normalization form applied to the text
	Top            int     // Keep only the best N results (0 = all)
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.HintMultiplier < 0 || math.IsNaN(o.HintMultiplier) || math.IsInf(o.HintMultiplier, 0) {
		return fmt.Errorf("%w: hint multiplier %v out of range", ErrInvalidInput, o.HintMultiplier)
	}
	if o.Top < 0 {
		return fmt.Errorf("%w: top must not be negative", ErrInvalidInput)
	}
	if !ngram.ValidForm(o.Form) {
		return fmt.Errorf("%w: unknown normalization form %q", ErrInvalidInput, o.Form)
	}
	return nil
}

// ScoreProfile sums weight*count over the n-grams of counts found in lang.
func ScoreProfile(lang *profile.Language, counts ngram.Counts) float64 {
	return scoreKeys(lang, counts, sortedKeys(counts))
}

// scoreKeys accumulates in a fixed key order so repeated runs produce
// identical sums.
func scoreKeys(lang *profile.Language, counts ngram.Counts, keys []string) float64 {
	var total float64
	for _, k := range keys {
		if w := lang.Weight(k); w != 0 {
			total += w * float64(counts[k])
		}
	}
	return total
}

func sortedKeys(counts ngram.Counts) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RankCounts scores counts against every language of store. Languages
// scoring zero are dropped. A hinted language is boosted by
// (1+hintMultiplier); a zero hintMultiplier falls back to the store
// default. The result is ordered by score descending, ties by code.
func RankCounts(store *profile.Store, counts ngram.Counts, hint string, hintMultiplier float64) []Score {
	if hintMultiplier == 0 {
		hintMultiplier = store.HintMultiplier()
	}

	keys := sortedKeys(counts)
	scores := make([]Score, 0, store.Len())
	for _, lang := range store.Languages() {
		s := scoreKeys(lang, counts, keys)
		if s == 0 {
			continue
		}
		if hint != "" && lang.Code() == hint && hintMultiplier != 0 {
			s *= 1 + hintMultiplier
		}
		scores = append(scores, Score{Language: lang.Code(), Score: s})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Language < scores[j].Language
	})
	return scores
}

// Rank extracts the n-grams of text once, up to the store's max length, and
// ranks every language. An empty slice means no language matched.
func Rank(store *profile.Store, text string, opts Options) ([]Score, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: no profile store", ErrInvalidInput)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	text, err := ngram.ApplyForm(text, opts.Form)
	if err != nil {
		return nil, err
	}
	counts := ngram.Extract(text, store.MaxLength())
	return RankCounts(store, counts, opts.Hint, opts.HintMultiplier), nil
}

// Identify ranks text and attaches each candidate's share of the summed
// scores. Shares are computed before Top truncation.
func Identify(store *profile.Store, text string, opts Options) ([]Result, error) {
	scores, err := Rank(store, text, opts)
	if err != nil {
		return nil, err
	}
	return Shares(scores, opts.Top), nil
}

// Shares converts ranked scores into results, keeping at most top entries
// when top is positive.
func Shares(scores []Score, top int) []Result {
	var total float64
	for _, s := range scores {
		total += s.Score
	}

	if top > 0 && len(scores) > top {
		scores = scores[:top]
	}
	results := make([]Result, len(scores))
	for i, s := range scores {
		results[i] = Result{Language: s.Language, Score: s.Score}
		if total > 0 {
			results[i].Share = s.Score / total
		}
	}
	return results
}
