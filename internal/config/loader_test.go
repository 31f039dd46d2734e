package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate runs the test in an empty directory with no user configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "langid.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader(nil)
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.GetViper() == nil {
		t.Error("Loader viper instance is nil")
	}
}

func TestLoadWithNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Profiles.Dir != "ngrams" {
		t.Errorf("Expected default profiles dir 'ngrams', got %s", cfg.Profiles.Dir)
	}
	if len(cfg.Batch.Include) != 1 || cfg.Batch.Include[0] != "*.txt" {
		t.Errorf("Expected default include [*.txt], got %v", cfg.Batch.Include)
	}
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "log_level: debug\nprofiles:\n  dir: /srv/ngrams\n")

	loader := NewLoader(nil)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.Profiles.Dir != "/srv/ngrams" {
		t.Errorf("Expected profiles dir /srv/ngrams, got %s", cfg.Profiles.Dir)
	}
	if loader.GetConfigFileUsed() == "" {
		t.Error("Expected a config file to be reported as used")
	}
}

func TestLoadWithValidYAMLFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
log_level: warn
profiles:
  dir: /data/ngrams
  extension: .ngm
  cache_file: /data/profiles.db
identify:
  hint: fr
  hint_multiplier: 0.25
  top: 3
  normalize: NFC
server:
  port: 9090
  watch: true
batch:
  workers: 8
  include: ["*.txt", "*.md"]
`)

	cfg, err := NewLoader(nil).LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.LogLevel)
	}
	if cfg.Profiles.Extension != ".ngm" || cfg.Profiles.CacheFile != "/data/profiles.db" {
		t.Errorf("Unexpected profiles section: %+v", cfg.Profiles)
	}
	if cfg.Identify.Hint != "fr" || cfg.Identify.HintMultiplier != 0.25 || cfg.Identify.Top != 3 {
		t.Errorf("Unexpected identify section: %+v", cfg.Identify)
	}
	if cfg.Server.Port != 9090 || !cfg.Server.Watch {
		t.Errorf("Unexpected server section: %+v", cfg.Server)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host to survive partial file, got %s", cfg.Server.Host)
	}
	if len(cfg.Batch.Include) != 2 {
		t.Errorf("Expected two include patterns, got %v", cfg.Batch.Include)
	}
}

func TestLoadWithInvalidYAMLFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "log_level: [unclosed\n")

	if _, err := NewLoader(nil).LoadWithFile(path); err == nil {
		t.Error("LoadWithFile() expected error for invalid YAML")
	}
}

func TestLoadWithNonExistentFile(t *testing.T) {
	isolate(t)

	if _, err := NewLoader(nil).LoadWithFile("/non/existent/langid.yaml"); err == nil {
		t.Error("LoadWithFile() expected error for missing file")
	}
}

func TestLoadWithValidationFailure(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "server:\n  port: -1\n")

	if _, err := NewLoader(nil).LoadWithFile(path); err == nil {
		t.Error("LoadWithFile() expected validation error")
	}

	cfg, err := NewLoader(nil).LoadWithoutValidation(path)
	if err != nil {
		t.Fatalf("LoadWithoutValidation() unexpected error: %v", err)
	}
	if cfg.Server.Port != -1 {
		t.Errorf("Expected port -1 to be loaded as is, got %d", cfg.Server.Port)
	}
}

func TestEnvironmentVariableOverride(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "log_level: warn\nserver:\n  port: 9090\n")

	t.Setenv("LANGID_LOG_LEVEL", "error")
	t.Setenv("LANGID_SERVER_PORT", "7070")
	t.Setenv("LANGID_IDENTIFY_HINT_MULTIPLIER", "0.5")

	cfg, err := NewLoader(nil).LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("Expected env log level error, got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Identify.HintMultiplier != 0.5 {
		t.Errorf("Expected env hint multiplier 0.5, got %v", cfg.Identify.HintMultiplier)
	}
}

func TestSetOverridesEverything(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "profiles:\n  dir: from-file\n")
	t.Setenv("LANGID_PROFILES_DIR", "from-env")

	loader := NewLoader(nil)
	loader.GetViper().Set("profiles.dir", "from-flag")

	cfg, err := loader.LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}
	if cfg.Profiles.Dir != "from-flag" {
		t.Errorf("Expected explicit value to win, got %s", cfg.Profiles.Dir)
	}
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "generated.yaml")

	if err := GenerateDefaultConfigFile(path); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() unexpected error: %v", err)
	}

	cfg, err := NewLoader(nil).LoadWithFile(path)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("Expected default port in generated file, got %d", cfg.Server.Port)
	}
}

func TestGetConfigSearchPaths(t *testing.T) {
	dir := isolate(t)
	paths := GetConfigSearchPaths()

	if paths[0] != "." {
		t.Errorf("Expected current directory first, got %s", paths[0])
	}
	if paths[len(paths)-1] != "/etc/langid" {
		t.Errorf("Expected /etc/langid last, got %s", paths[len(paths)-1])
	}
	want := filepath.Join(dir, "xdg", "langid")
	found := false
	for _, p := range paths {
		if p == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected XDG path %s in %v", want, paths)
	}
}
