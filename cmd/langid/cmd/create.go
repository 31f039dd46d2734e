package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/langid/internal/profile"
)

func newCreateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create language profiles from training texts",
		Long: `Create n-gram profiles from training texts.

With --text-directory every "<code><ext>" file below the directory becomes the
profile "<code><ext>" in the profile directory, built in parallel. Otherwise a
single profile is built from --text-file (or stdin) into --ngram-file (or
stdout).

Examples:
  langid create --text-directory texts --ngram-directory ngrams
  langid create --text-file en.txt --ngram-file ngrams/en.txt
  cat de.txt | langid create --max-length 5 > de.ngm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("text-directory"); dir != "" {
				return a.runCreateDirectory(cmd, dir)
			}
			return a.runCreateFile(cmd)
		},
	}

	f := cmd.Flags()
	f.String("text-file", "", "training text file (default stdin)")
	f.String("ngram-file", "", "profile output file (default stdout)")
	f.String("text-directory", "", "directory of training texts named by language code")
	f.String("ngram-directory", "", "output directory for profiles (default profiles.dir)")
	f.Int("max-length", 0, "maximum n-gram length")
	f.String("text-extension", "", "extension of training text files")
	f.Int("workers", 0, "number of parallel builds")
	f.String("normalize", "", "Unicode normalization form applied to training text")
	bindFlag(f, "ngram-directory", "profiles.dir")
	bindFlag(f, "max-length", "build.max_length")
	bindFlag(f, "text-extension", "build.text_extension")
	bindFlag(f, "workers", "build.workers")
	bindFlag(f, "normalize", "identify.normalize")

	return cmd
}

func (a *app) runCreateDirectory(cmd *cobra.Command, textDir string) error {
	start := time.Now()
	results, err := profile.BuildDirectory(cmd.Context(), profile.DirectoryConfig{
		TextDir:        textDir,
		NgramDir:       a.cfg.Profiles.Dir,
		TextExtension:  a.cfg.Build.TextExtension,
		NgramExtension: a.cfg.Profiles.Extension,
		Workers:        a.cfg.Build.Workers,
		Build:          a.cfg.ToBuildConfig(),
		Logger:         a.logger,
	})

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Code, r.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%-5s %8d n-grams  %s\n", r.Code, r.Stats.Ngrams, r.NgramPath)
	}
	if err != nil {
		return err
	}

	a.logger.Info("created language profiles",
		"count", len(results), "directory", a.cfg.Profiles.Dir, "duration", time.Since(start))
	return nil
}

func (a *app) runCreateFile(cmd *cobra.Command) error {
	textPath, _ := cmd.Flags().GetString("text-file")
	ngramPath, _ := cmd.Flags().GetString("ngram-file")
	build := a.cfg.ToBuildConfig()

	if textPath != "" && ngramPath != "" {
		stats, err := profile.BuildFile(textPath, ngramPath, build)
		if err != nil {
			return err
		}
		a.logger.Info("created language profile", "path", ngramPath, "terms", stats.Terms, "ngrams", stats.Ngrams)
		return nil
	}

	var r io.Reader = cmd.InOrStdin()
	if textPath != "" {
		f, err := os.Open(textPath) //nolint:gosec // user-selected input path
		if err != nil {
			return fmt.Errorf("failed to open text file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	w, closeOut, err := openOutput(cmd.OutOrStdout(), ngramPath)
	if err != nil {
		return err
	}
	stats, err := profile.BuildTo(r, w, build)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		if ngramPath != "" {
			_ = os.Remove(ngramPath)
		}
		if errors.Is(err, profile.ErrInvalidInput) && textPath == "" {
			return fmt.Errorf("%w (reading training text from stdin)", err)
		}
		return err
	}

	a.logger.Debug("created language profile", "terms", stats.Terms, "ngrams", stats.Ngrams)
	return nil
}
