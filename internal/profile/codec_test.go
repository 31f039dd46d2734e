package profile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

func TestWrite_Format(t *testing.T) {
	freqs := ngram.Frequencies{
		"$a$":         1,
		"b$":          2.5,
		"$x":          1,
		"abcdefghijk": 0.125,
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, freqs))

	want := "b$        2.5\n" +
		"$a$       1\n" +
		"$x        1\n" +
		"abcdefghijk 0.125\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteParse_RoundTrip(t *testing.T) {
	freqs, _, err := Build("Le renard brun rapide saute par-dessus le chien paresseux. Ça va très bien!", DefaultBuildConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, freqs))

	parsed, err := Parse(&buf, "roundtrip")
	require.NoError(t, err)
	require.Len(t, parsed, len(freqs))
	for k, w := range freqs {
		assert.InDelta(t, w, parsed[k], 1e-12, "ngram %q", k)
	}
}

func TestParse_Accepts(t *testing.T) {
	input := "\uFEFF$th      0.5\n  he$\t\t1e-3  \nx 2\n"
	freqs, err := Parse(strings.NewReader(input), "mem")
	require.NoError(t, err)

	assert.Equal(t, ngram.Frequencies{"$th": 0.5, "he$": 0.001, "x": 2}, freqs)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing weight", "$th 0.5\nhe$\n", 2},
		{"non numeric weight", "$th abc\n", 1},
		{"blank line", "$th 0.5\n\nhe$ 0.2\n", 2},
		{"negative weight", "$th -1\n", 1},
		{"not a number", "$th NaN\n", 1},
		{"infinite", "$th +Inf\n", 1},
		{"markers only", "$$ 0.3\n", 1},
		{"duplicate", "$th 0.5\n$th 0.4\n", 2},
		{"extra field", "$th 0.5 0.6\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "profiles/en.txt")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedProfile))

			var mErr *MalformedProfileError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, "profiles/en.txt", mErr.Path)
			assert.Equal(t, tt.line, mErr.Line)
			assert.Contains(t, err.Error(), "profiles/en.txt:")
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "empty.txt")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
