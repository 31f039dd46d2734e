package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/langid/internal/config"
)

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("LANGID_SERVER_PORT", "9099")

	stdout, _, err := execute(t, "", "config", "show", "--profiles", "my-profiles")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "my-profiles", cfg.Profiles.Dir)
	assert.Equal(t, 9099, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Build.MaxLength)
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "langid.yaml")
	assert.FileExists(t, filepath.Join(dir, "langid.yaml"))

	_, _, err = execute(t, "", "config", "init")
	assert.Error(t, err, "refuses to overwrite")

	_, _, err = execute(t, "", "config", "init", "--force")
	assert.NoError(t, err)

	// The written file is picked up from the working directory.
	stdout, _, err = execute(t, "", "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, stdout, "using: ")
}

func TestConfigFileFlag(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identify:\n  top: 2\n"), 0o600))

	stdout, _, err := execute(t, "", "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "top: 2")

	_, _, err = execute(t, "", "config", "show", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
