// Package cmd implements the langid command line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/langid/internal/config"
	"github.com/MeKo-Tech/langid/internal/version"
)

// viperKey is the flag annotation naming the configuration key a flag
// overrides.
const viperKey = "langid_viper_key"

// app is the state shared by the commands of one root command.
type app struct {
	v       *viper.Viper
	loader  *config.Loader
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the langid command tree. Every call returns an
// independent tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.loader = config.NewLoader(a.v)

	rootCmd := &cobra.Command{
		Use:   "langid",
		Short: "Identify the language of text with character n-gram profiles",
		Long: `langid identifies the natural language of a text by comparing its character
n-grams against per-language reference profiles.

This tool provides:
- Profile creation from training texts
- Ranked identification with an optional language hint
- Parallel batch identification of text files
- An HTTP and WebSocket server
- Packed profile caches for fast startup

Examples:
  langid create --text-directory texts --ngram-directory ngrams
  langid identify --text "Der schnelle braune Fuchs"
  langid batch docs/ --recursive --format json
  langid serve --port 8080 --watch`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/langid, /etc/langid)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.StringP("profiles", "n", "", "directory containing the language profiles")
	pf.String("profile-extension", "", "file extension of language profiles")
	pf.String("cache-file", "", "load profiles from a packed cache file instead of the directory")
	bindFlag(pf, "verbose", "verbose")
	bindFlag(pf, "log-level", "log_level")
	bindFlag(pf, "profiles", "profiles.dir")
	bindFlag(pf, "profile-extension", "profiles.extension")
	bindFlag(pf, "cache-file", "profiles.cache_file")

	rootCmd.AddCommand(
		newIdentifyCommand(a),
		newCreateCommand(a),
		newBatchCommand(a),
		newServeCommand(a),
		newLanguagesCommand(a),
		newPackCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(1)
	}
}

// bindFlag marks a flag as the override for a configuration key. The
// binding happens once the command to run is known.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, viperKey, []string{key})
}

// init binds the flags of the command being run, loads the configuration and
// installs the logger.
func (a *app) init(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKey]; len(keys) > 0 && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(a.logger)

	if used := a.loader.GetConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.LogLevel == "debug":
		level = slog.LevelDebug
	case cfg.LogLevel == "warn":
		level = slog.LevelWarn
	case cfg.LogLevel == "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
