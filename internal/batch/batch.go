// Package batch identifies the language of many text files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MeKo-Tech/langid/internal/identify"
	"github.com/MeKo-Tech/langid/internal/profile"
)

// ErrSkipped marks files left unprocessed after the run was stopped.
var ErrSkipped = errors.New("skipped")

// Config holds batch processing configuration.
type Config struct {
	Workers         int
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
	ContinueOnError bool
	Options         identify.Options
	Progress        ProgressCallback
	Logger          *slog.Logger
}

// DefaultConfig returns the settings the CLI starts from.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		IncludePatterns: []string{"*.txt"},
		ContinueOnError: true,
	}
}

// FileResult is the outcome for one input file.
type FileResult struct {
	File     string            `json:"file"`
	Results  []identify.Result `json:"results"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"-"`
	Err      error             `json:"-"`
}

// Result aggregates a batch run in input order.
type Result struct {
	Files    []FileResult
	Workers  int
	Duration time.Duration
}

// Stats summarizes a batch run.
type Stats struct {
	Total      int
	Identified int
	Unmatched  int
	Failed     int
	Languages  map[string]int
}

// ProcessBatch identifies every file in paths. Per-file failures are kept in
// the matching FileResult; unless ContinueOnError is set the first failure
// stops the remaining work and is returned.
func ProcessBatch(ctx context.Context, paths []string, store *profile.Store, cfg Config) (*Result, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: no profile store", profile.ErrInvalidInput)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to process", profile.ErrInvalidInput)
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := min(max(cfg.Workers, 1), len(paths))

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	start := time.Now()
	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	if cfg.Progress != nil {
		cfg.Progress.OnStart(len(paths))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		firstErr error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := processFile(paths[i], store, cfg.Options)
				results[i] = res

				mu.Lock()
				done++
				current := done
				if res.Err != nil && firstErr == nil && !cfg.ContinueOnError {
					firstErr = fmt.Errorf("%s: %w", res.File, res.Err)
					cancel()
				}
				mu.Unlock()

				if res.Err != nil {
					logger.Warn("file failed", "file", res.File, "error", res.Err)
					if cfg.Progress != nil {
						cfg.Progress.OnError(current, res.Err)
					}
				}
				if cfg.Progress != nil {
					cfg.Progress.OnProgress(current, len(paths))
				}
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cfg.Progress != nil {
		cfg.Progress.OnComplete()
	}

	for i := range results {
		if results[i].File == "" {
			results[i] = FileResult{File: paths[i], Results: []identify.Result{}, Err: ErrSkipped, Error: ErrSkipped.Error()}
		}
	}

	result := &Result{Files: results, Workers: workers, Duration: time.Since(start)}
	if firstErr != nil {
		return result, firstErr
	}
	if err := parent.Err(); err != nil {
		return result, err
	}
	logger.Debug("batch finished", "files", len(paths), "workers", workers, "duration", result.Duration)
	return result, nil
}

func processFile(path string, store *profile.Store, opts identify.Options) FileResult {
	start := time.Now()
	res := FileResult{File: path, Results: []identify.Result{}}

	data, err := os.ReadFile(path)
	if err == nil {
		var results []identify.Result
		results, err = identify.Identify(store, string(data), opts)
		if err == nil {
			res.Results = results
		}
	}
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	}
	res.Duration = time.Since(start)
	return res
}

// Stats counts identified, unmatched and failed files and how often each
// language won.
func (r *Result) Stats() Stats {
	s := Stats{Total: len(r.Files), Languages: make(map[string]int)}
	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			s.Failed++
		case len(f.Results) == 0:
			s.Unmatched++
		default:
			s.Identified++
			s.Languages[f.Results[0].Language]++
		}
	}
	return s
}
