package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MeKo-Tech/langid/internal/testutil"
)

// isolate runs the test in an empty working directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

// execute runs a fresh root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// profilesDir isolates the test and builds the corpus profiles.
func profilesDir(t *testing.T) string {
	t.Helper()

	texts := testutil.GetTextsDir(t)
	isolate(t)
	return buildInto(t, texts)
}

func buildInto(t *testing.T, texts string) string {
	t.Helper()

	dir := t.TempDir()
	if _, _, err := execute(t, "", "create", "--text-directory", texts, "--ngram-directory", dir); err != nil {
		t.Fatalf("building profiles: %v", err)
	}
	return dir
}
