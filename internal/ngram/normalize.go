package ngram

import (
	"errors"
	"fmt"
)

// ErrEmptyProfile is returned when there is nothing to normalize.
var ErrEmptyProfile = errors.New("ngram: empty profile")

// Normalize converts raw counts into relative frequencies bucketed by
// stripped n-gram length. Within the bucket of length L every count becomes
// count/sum*L, so the weights of a bucket add up to L and longer matches
// weigh more when scored. Buckets are normalized independently.
func Normalize(counts Counts, maxLength int) (Frequencies, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyProfile
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("ngram: invalid max length %d", maxLength)
	}

	sums := make([]int, maxLength+1)
	for ngram, count := range counts {
		l := Length(ngram)
		if l < 1 || l > maxLength {
			return nil, fmt.Errorf("ngram: %q does not fit max length %d", ngram, maxLength)
		}
		sums[l] += count
	}

	freqs := make(Frequencies, len(counts))
	for ngram, count := range counts {
		l := Length(ngram)
		if sums[l] == 0 {
			freqs[ngram] = 0
			continue
		}
		freqs[ngram] = float64(count) / float64(sums[l]) * float64(l)
	}

	return freqs, nil
}

// MaxLength returns the longest stripped n-gram length in the profile.
func (f Frequencies) MaxLength() int {
	longest := 0
	for ngram := range f {
		longest = max(longest, Length(ngram))
	}
	return longest
}

// BucketSums returns the total weight per stripped n-gram length.
func (f Frequencies) BucketSums() map[int]float64 {
	sums := make(map[int]float64)
	for ngram, w := range f {
		sums[Length(ngram)] += w
	}
	return sums
}

// Clone returns a copy of f.
func (f Frequencies) Clone() Frequencies {
	out := make(Frequencies, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
