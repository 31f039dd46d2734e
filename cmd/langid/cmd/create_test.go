package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/testutil"
)

func TestCreateCommand_Directory(t *testing.T) {
	texts := testutil.GetTextsDir(t)
	isolate(t)
	out := filepath.Join(t.TempDir(), "profiles")

	stdout, _, err := execute(t, "", "create", "--text-directory", texts, "--ngram-directory", out,
		"--workers", "3", "--profile-extension", ".ngm")
	require.NoError(t, err)

	for _, s := range testutil.Samples() {
		assert.FileExists(t, filepath.Join(out, s.Language+".ngm"))
		assert.Contains(t, stdout, s.Language+" ")
	}
}

func TestCreateCommand_StdinToStdout(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "cat", "create")
	require.NoError(t, err)
	assert.Equal(t, "$cat$     3\n$ca       1\nat$       1\n$c        0.5\nt$        0.5\n", stdout)
}

func TestCreateCommand_FileToFile(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "en.txt")
	out := filepath.Join(dir, "out", "en.txt")
	require.NoError(t, os.WriteFile(in, []byte("the cat and the hat"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o750))

	_, _, err := execute(t, "", "create", "--text-file", in, "--ngram-file", out, "--max-length", "3")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "$the$"), string(data))
}

func TestCreateCommand_Errors(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "", "create")
	assert.Error(t, err, "empty stdin")

	out := filepath.Join(dir, "empty.txt")
	_, _, err = execute(t, "... !!!", "create", "--ngram-file", out)
	assert.Error(t, err)
	assert.NoFileExists(t, out)

	_, _, err = execute(t, "", "create", "--text-directory", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "create", "extra-arg")
	assert.Error(t, err)
}
