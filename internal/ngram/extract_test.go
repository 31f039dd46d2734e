package ngram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_BoundaryMarking(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		want      Counts
	}{
		{
			name:      "three letter term",
			text:      "cat",
			maxLength: 4,
			want:      Counts{"$c": 1, "$ca": 1, "$cat$": 1, "at$": 1, "t$": 1},
		},
		{
			name:      "single rune term carries both markers",
			text:      "a",
			maxLength: 4,
			want:      Counts{"$a$": 1},
		},
		{
			name:      "term longer than max length",
			text:      "hello",
			maxLength: 4,
			want: Counts{
				"$h": 1, "$he": 1, "$hel": 1, "$hell": 1,
				"ello$": 1, "llo$": 1, "lo$": 1, "o$": 1,
			},
		},
		{
			name:      "medial bigrams",
			text:      "hello",
			maxLength: 2,
			want:      Counts{"$h": 1, "$he": 1, "el": 1, "ll": 1, "lo$": 1, "o$": 1},
		},
		{
			name:      "max length one",
			text:      "abc",
			maxLength: 1,
			want:      Counts{"$a": 1, "b": 1, "c$": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text, tt.maxLength))
		})
	}
}

func TestExtract_CaseFoldingAndRepeats(t *testing.T) {
	got := Extract("The the THE", 4)
	assert.Equal(t, Counts{"$t": 3, "$th": 3, "$the$": 3, "he$": 3, "e$": 3}, got)
}

func TestExtract_NonLatinScripts(t *testing.T) {
	got := Extract("Мир", 4)
	assert.Equal(t, Counts{"$м": 1, "$ми": 1, "$мир$": 1, "ир$": 1, "р$": 1}, got)

	got = Extract("ΟΔΟΣ", 4)
	assert.Contains(t, got, "$οδ")
	assert.Contains(t, got, "$οδο")
}

func TestExtract_EmptyInput(t *testing.T) {
	counts, stats := ExtractStats("", 4)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)
	assert.Equal(t, Stats{}, stats)

	counts, stats = ExtractStats("!!! ... ???", 4)
	assert.Empty(t, counts)
	assert.Equal(t, 0, stats.Terms)
}

func TestExtract_Stats(t *testing.T) {
	counts, stats := ExtractStats("cat, cat; dog", 4)
	assert.Equal(t, 3, stats.Terms)
	assert.Equal(t, len(counts), stats.Ngrams)
	assert.Equal(t, 2, counts["$cat$"])
	assert.Equal(t, 1, counts["$dog$"])
}

func TestTerms(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"don't stop!", []string{"don", "t", "stop"}},
		{"snake_case stays", []string{"snake_case", "stays"}},
		{"abc123 4x4", []string{"abc123", "4x4"}},
		{"  leading and trailing  ", []string{"leading", "and", "trailing"}},
		{"速い茶色のフォックス", []string{"速い茶色のフォックス"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Terms(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLength(t *testing.T) {
	assert.Equal(t, 1, Length("$a$"))
	assert.Equal(t, 3, Length("$cat$"))
	assert.Equal(t, 2, Length("ир$"))
	assert.Equal(t, 4, Length("ello"))
}

func BenchmarkExtract(b *testing.B) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for b.Loop() {
		Extract(text, DefaultMaxLength)
	}
}
