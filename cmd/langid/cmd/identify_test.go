package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/testutil"
)

func TestIdentifyCommand_Samples(t *testing.T) {
	dir := profilesDir(t)

	for _, sample := range testutil.Samples() {
		t.Run(sample.Language, func(t *testing.T) {
			stdout, _, err := execute(t, "", "identify", "--profiles", dir, "--text", sample.Text)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(stdout), "\n")
			require.NotEmpty(t, lines)
			fields := strings.Fields(lines[0])
			require.Len(t, fields, 3)
			assert.Equal(t, sample.Language, fields[0])
			assert.True(t, strings.HasSuffix(fields[2], "%"))
		})
	}
}

func TestIdentifyCommand_Sources(t *testing.T) {
	dir := profilesDir(t)
	text := testutil.Samples()[5].Text

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"text file", "", []string{"--text-file", path}},
		{"arguments", "", strings.Fields(text)},
		{"stdin", text, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"identify", "--profiles", dir, "--top", "1"}, tt.args...)
			stdout, _, err := execute(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(stdout, "ru "), stdout)
			assert.Equal(t, 1, strings.Count(stdout, "\n"))
		})
	}
}

func TestIdentifyCommand_JSON(t *testing.T) {
	dir := profilesDir(t)

	stdout, _, err := execute(t, "", "identify", "--profiles", dir, "--format", "json", "--top", "2",
		"--text", testutil.Samples()[0].Text)
	require.NoError(t, err)

	var out identifyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Identified)
	assert.Equal(t, "de", out.Language)
	assert.Len(t, out.Results, 2)
}

func TestIdentifyCommand_Unidentified(t *testing.T) {
	dir := profilesDir(t)

	stdout, _, err := execute(t, "", "identify", "--profiles", dir, "--text", "1234 5678")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Could not identify")
}

func TestIdentifyCommand_Errors(t *testing.T) {
	dir := profilesDir(t)

	_, _, err := execute(t, "", "identify", "--profiles", dir)
	assert.Error(t, err, "empty stdin")

	_, _, err = execute(t, "", "identify", "--profiles", filepath.Join(dir, "missing"), "--text", "hello")
	assert.Error(t, err)

	_, _, err = execute(t, "", "identify", "--profiles", dir, "--text-file", filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)

	broken := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(broken, "en.txt"), []byte("$th 1\nbroken\n"), 0o600))
	_, _, err = execute(t, "", "identify", "--profiles", broken, "--text", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "en.txt:2")
}
