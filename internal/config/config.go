package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/langid/internal/identify"
	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/profile"
)

// Config represents the complete configuration for the langid application.
// It includes settings for all commands (identify, create, batch, serve, pack)
// and supports loading from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Profiles ProfilesConfig `mapstructure:"profiles" yaml:"profiles" json:"profiles"`
	Identify IdentifyConfig `mapstructure:"identify" yaml:"identify" json:"identify"`
	Build    BuildConfig    `mapstructure:"build" yaml:"build" json:"build"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ProfilesConfig locates the language profiles.
type ProfilesConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir" json:"dir"`
	Extension string `mapstructure:"extension" yaml:"extension" json:"extension"`
	// CacheFile, when set, is a bbolt pack loaded instead of Dir.
	CacheFile string `mapstructure:"cache_file" yaml:"cache_file" json:"cache_file"`
}

// IdentifyConfig holds identification defaults.
type IdentifyConfig struct {
	Hint           string  `mapstructure:"hint" yaml:"hint" json:"hint"`
	HintMultiplier float64 `mapstructure:"hint_multiplier" yaml:"hint_multiplier" json:"hint_multiplier"`
	Top            int     `mapstructure:"top" yaml:"top" json:"top"`
	Normalize      string  `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
}

// BuildConfig holds profile creation settings.
type BuildConfig struct {
	MaxLength     int    `mapstructure:"max_length" yaml:"max_length" json:"max_length"`
	TextExtension string `mapstructure:"text_extension" yaml:"text_extension" json:"text_extension"`
	Workers       int    `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format" json:"format"`
	File           string `mapstructure:"file" yaml:"file" json:"file"`
	ScorePrecision int    `mapstructure:"score_precision" yaml:"score_precision" json:"score_precision"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyKB       int    `mapstructure:"max_body_kb" yaml:"max_body_kb" json:"max_body_kb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	Watch           bool   `mapstructure:"watch" yaml:"watch" json:"watch"`

	RateLimitEnabled  bool  `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxTextPerDay     int64 `mapstructure:"max_text_per_day" yaml:"max_text_per_day" json:"max_text_per_day"`
}

// BatchConfig contains batch identification settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Profiles: ProfilesConfig{
			Dir:       "ngrams",
			Extension: profile.DefaultExtension,
		},
		Identify: IdentifyConfig{
			HintMultiplier: profile.DefaultHintMultiplier,
		},
		Build: BuildConfig{
			MaxLength:     ngram.DefaultMaxLength,
			TextExtension: profile.DefaultExtension,
			Workers:       4,
		},
		Output: OutputConfig{
			Format:         "text",
			ScorePrecision: identify.DefaultPrecision,
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxBodyKB:         1024,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			RequestsPerMinute: 120,
			RequestsPerHour:   3000,
		},
		Batch: BatchConfig{
			Workers:         4,
			Include:         []string{"*.txt"},
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Output.ScorePrecision < 0 || c.Output.ScorePrecision > 17 {
		return fmt.Errorf("invalid score precision: %d (must be between 0 and 17)", c.Output.ScorePrecision)
	}

	if err := validateMultiplier(c.Identify.HintMultiplier, "identify.hint_multiplier"); err != nil {
		return err
	}
	if c.Identify.Top < 0 {
		return fmt.Errorf("invalid identify.top: %d (must not be negative)", c.Identify.Top)
	}
	if !ngram.ValidForm(c.Identify.Normalize) {
		return fmt.Errorf("invalid identify.normalize: %s (must be one of: %s)",
			c.Identify.Normalize, strings.Join(ngram.Forms[1:], ", "))
	}

	if c.Build.MaxLength <= 0 {
		return fmt.Errorf("invalid build max length: %d (must be positive)", c.Build.MaxLength)
	}
	if c.Build.Workers <= 0 {
		return fmt.Errorf("invalid build workers: %d (must be positive)", c.Build.Workers)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyKB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyKB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RequestsPerMinute < 0 || c.Server.RequestsPerHour < 0 ||
		c.Server.MaxRequestsPerDay < 0 || c.Server.MaxTextPerDay < 0 {
		return fmt.Errorf("invalid rate limits: values must not be negative")
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToStoreConfig converts to the profile store configuration.
func (c *Config) ToStoreConfig() profile.StoreConfig {
	return profile.StoreConfig{HintMultiplier: c.Identify.HintMultiplier}
}

// ToIdentifyOptions converts to per-request identification options.
func (c *Config) ToIdentifyOptions() identify.Options {
	return identify.Options{
		Hint:           c.Identify.Hint,
		HintMultiplier: c.Identify.HintMultiplier,
		Form:           c.Identify.Normalize,
		Top:            c.Identify.Top,
	}
}

// ToBuildConfig converts to the profile build configuration.
func (c *Config) ToBuildConfig() profile.BuildConfig {
	return profile.BuildConfig{
		MaxLength: c.Build.MaxLength,
		Form:      c.Identify.Normalize,
	}
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateMultiplier validates a hint multiplier: finite and not negative.
func validateMultiplier(value float64, name string) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("invalid %s: %v (must be a non-negative number)", name, value)
	}
	return nil
}
