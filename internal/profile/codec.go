package profile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

// ngramColumn is the width the n-gram column is padded to when writing.
const ngramColumn = 10

// Entry is one line of a profile file.
type Entry struct {
	Ngram  string  `json:"ngram"`
	Weight float64 `json:"weight"`
}

// Parse reads a profile in the line format "<ngram><spaces><weight>".
// source names the input in error messages. Every line must hold exactly
// one entry; the first offending line aborts parsing with a
// *MalformedProfileError.
func Parse(r io.Reader, source string) (ngram.Frequencies, error) {
	freqs := make(ngram.Frequencies)
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		line = strings.TrimSpace(line)

		key, weight, err := parseLine(line)
		if err == nil {
			if _, dup := freqs[key]; dup {
				err = fmt.Errorf("duplicate n-gram %q", key)
			}
		}
		if err != nil {
			return nil, &MalformedProfileError{Path: source, Line: lineNum, Text: line, Err: err}
		}
		freqs[key] = weight
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading profile %s: %w", source, err)
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("%w: profile %s is empty", ErrInvalidInput, source)
	}

	return freqs, nil
}

func parseLine(line string) (string, float64, error) {
	sep := strings.IndexFunc(line, unicode.IsSpace)
	if sep <= 0 {
		return "", 0, errors.New("expected an n-gram and a weight")
	}
	key := line[:sep]
	field := strings.TrimSpace(line[sep:])

	if ngram.Length(key) == 0 {
		return "", 0, errors.New("n-gram has no characters besides boundary markers")
	}
	weight, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid weight %q", field)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return "", 0, fmt.Errorf("weight %q out of range", field)
	}
	return key, weight, nil
}

// Entries returns the profile ordered by weight descending, ties by n-gram.
func Entries(freqs ngram.Frequencies) []Entry {
	entries := make([]Entry, 0, len(freqs))
	for k, w := range freqs {
		entries = append(entries, Entry{Ngram: k, Weight: w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Ngram < entries[j].Ngram
	})
	return entries
}

// Write serializes a profile one entry per line, heaviest first.
func Write(w io.Writer, freqs ngram.Frequencies) error {
	bw := bufio.NewWriter(w)
	for _, e := range Entries(freqs) {
		pad := max(ngramColumn-utf8.RuneCountInString(e.Ngram), 1)
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", e.Ngram, strings.Repeat(" ", pad),
			strconv.FormatFloat(e.Weight, 'g', -1, 64)); err != nil {
			return fmt.Errorf("failed writing profile: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed writing profile: %w", err)
	}
	return nil
}
