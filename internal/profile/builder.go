package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

// BuildConfig controls how a profile is built from text.
type BuildConfig struct {
	MaxLength int    // N-gram length (0 = ngram.DefaultMaxLength)
	Form      string // Unicode normalization form applied first ("" = none)
}

// DefaultBuildConfig returns the default build configuration.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{MaxLength: ngram.DefaultMaxLength}
}

func (c BuildConfig) maxLength() int {
	if c.MaxLength <= 0 {
		return ngram.DefaultMaxLength
	}
	return c.MaxLength
}

// Build extracts and normalizes the n-grams of a training text.
func Build(text string, cfg BuildConfig) (ngram.Frequencies, ngram.Stats, error) {
	if text == "" {
		return nil, ngram.Stats{}, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}
	text, err := ngram.ApplyForm(text, cfg.Form)
	if err != nil {
		return nil, ngram.Stats{}, err
	}

	counts, stats := ngram.ExtractStats(text, cfg.maxLength())
	freqs, err := ngram.Normalize(counts, cfg.maxLength())
	if errors.Is(err, ngram.ErrEmptyProfile) {
		return nil, stats, fmt.Errorf("%w: text contains no words", ErrInvalidInput)
	}
	if err != nil {
		return nil, stats, err
	}
	return freqs, stats, nil
}

// BuildTo reads a training text from r and writes its profile to w.
func BuildTo(r io.Reader, w io.Writer, cfg BuildConfig) (ngram.Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ngram.Stats{}, fmt.Errorf("failed reading text: %w", err)
	}
	freqs, stats, err := Build(string(data), cfg)
	if err != nil {
		return stats, err
	}
	return stats, Write(w, freqs)
}

// BuildFile builds the profile of textPath into ngramPath.
func BuildFile(textPath, ngramPath string, cfg BuildConfig) (ngram.Stats, error) {
	if textPath == "" || ngramPath == "" {
		return ngram.Stats{}, fmt.Errorf("%w: text and profile paths are required", ErrInvalidInput)
	}
	in, err := os.Open(textPath) //nolint:gosec // G304: training corpus chosen by the user
	if err != nil {
		return ngram.Stats{}, fmt.Errorf("failed to open text: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(ngramPath) //nolint:gosec // G304: output path chosen by the user
	if err != nil {
		return ngram.Stats{}, fmt.Errorf("failed to create profile: %w", err)
	}

	stats, err := BuildTo(in, out, cfg)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close profile: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(ngramPath)
		return stats, fmt.Errorf("%s: %w", textPath, err)
	}
	return stats, nil
}

// DirectoryConfig configures BuildDirectory.
type DirectoryConfig struct {
	TextDir        string
	NgramDir       string
	TextExtension  string // Defaults to DefaultExtension
	NgramExtension string // Defaults to DefaultExtension
	Workers        int    // Parallel builds (0 = runtime.NumCPU())
	Build          BuildConfig
	Logger         *slog.Logger
}

// BuildResult describes one profile built by BuildDirectory.
type BuildResult struct {
	Code      string        `json:"code"`
	TextPath  string        `json:"text_path"`
	NgramPath string        `json:"ngram_path"`
	Stats     ngram.Stats   `json:"stats"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// BuildDirectory builds one profile per "<code><text-ext>" file found below
// TextDir into NgramDir/"<code><ngram-ext>". Every file is attempted; the
// first failure in code order is returned alongside all results.
func BuildDirectory(ctx context.Context, cfg DirectoryConfig) ([]BuildResult, error) {
	if cfg.NgramDir == "" {
		return nil, fmt.Errorf("%w: profile directory cannot be empty", ErrInvalidInput)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	texts, err := Discover(cfg.TextDir, cfg.TextExtension)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.NgramDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	ngramExt := NormalizeExtension(cfg.NgramExtension)
	jobs := make(chan int, len(texts))
	results := make([]BuildResult, len(texts))

	var wg sync.WaitGroup
	for range min(cfg.Workers, len(texts)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					results[i].Err = ctx.Err()
					continue
				}
				res := &results[i]
				start := time.Now()
				res.Stats, res.Err = BuildFile(res.TextPath, res.NgramPath, cfg.Build)
				res.Duration = time.Since(start)
				if res.Err == nil {
					logger.Debug("built language profile",
						"language", res.Code, "path", res.NgramPath, "ngrams", res.Stats.Ngrams, "duration", res.Duration)
				}
			}
		}()
	}

	for i, t := range texts {
		results[i] = BuildResult{
			Code:      t.Code,
			TextPath:  t.Path,
			NgramPath: filepath.Join(cfg.NgramDir, t.Code+ngramExt),
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	for _, r := range results {
		if r.Err != nil {
			return results, fmt.Errorf("language %s: %w", r.Code, r.Err)
		}
	}
	return results, nil
}
