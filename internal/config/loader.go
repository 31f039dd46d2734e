package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "langid"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LANGID"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader over v. Flags bound to v take precedence over
// environment, file and defaults. A nil v gets a fresh instance.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Load searches the standard paths for a configuration file, applies
// environment variables and defaults, and validates the result.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile loads configuration from a specific file path. An empty path
// searches the standard locations and tolerates a missing file.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	cfg, err := l.read(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation is LoadWithFile without the validation step.
func (l *Loader) LoadWithoutValidation(configFile string) (*Config, error) {
	return l.read(configFile)
}

func (l *Loader) read(configFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()

		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables maps keys like server.max_body_kb to
// LANGID_SERVER_MAX_BODY_KB.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("profiles.dir", d.Profiles.Dir)
	l.v.SetDefault("profiles.extension", d.Profiles.Extension)
	l.v.SetDefault("profiles.cache_file", d.Profiles.CacheFile)

	l.v.SetDefault("identify.hint", d.Identify.Hint)
	l.v.SetDefault("identify.hint_multiplier", d.Identify.HintMultiplier)
	l.v.SetDefault("identify.top", d.Identify.Top)
	l.v.SetDefault("identify.normalize", d.Identify.Normalize)

	l.v.SetDefault("build.max_length", d.Build.MaxLength)
	l.v.SetDefault("build.text_extension", d.Build.TextExtension)
	l.v.SetDefault("build.workers", d.Build.Workers)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.file", d.Output.File)
	l.v.SetDefault("output.score_precision", d.Output.ScorePrecision)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.max_body_kb", d.Server.MaxBodyKB)
	l.v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	l.v.SetDefault("server.watch", d.Server.Watch)
	l.v.SetDefault("server.rate_limit_enabled", d.Server.RateLimitEnabled)
	l.v.SetDefault("server.requests_per_minute", d.Server.RequestsPerMinute)
	l.v.SetDefault("server.requests_per_hour", d.Server.RequestsPerHour)
	l.v.SetDefault("server.max_requests_per_day", d.Server.MaxRequestsPerDay)
	l.v.SetDefault("server.max_text_per_day", d.Server.MaxTextPerDay)

	l.v.SetDefault("batch.workers", d.Batch.Workers)
	l.v.SetDefault("batch.recursive", d.Batch.Recursive)
	l.v.SetDefault("batch.include", d.Batch.Include)
	l.v.SetDefault("batch.exclude", d.Batch.Exclude)
	l.v.SetDefault("batch.continue_on_error", d.Batch.ContinueOnError)
}

// GenerateDefaultConfigFile writes the default configuration as YAML.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	l := NewLoader(nil)
	l.setDefaults()
	return l.v.WriteConfigAs(filename)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	return append(paths, "/etc/"+ConfigFileName)
}
