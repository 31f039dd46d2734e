package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/langid/internal/batch"
)

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files or directories...]",
		Short: "Identify the language of many text files in parallel",
		Long: `Identify the language of many text files using parallel workers.

Directories are scanned for files matching the include patterns (recursively
with --recursive). Results are printed as text, JSON or CSV.

Examples:
  langid batch notes/*.txt
  langid batch corpus/ --recursive --workers 8
  langid batch corpus/ --format csv --output results.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args)
		},
	}

	f := cmd.Flags()
	f.IntP("workers", "w", 0, "number of parallel workers")
	f.BoolP("recursive", "r", false, "scan directories recursively")
	f.StringSlice("include", nil, "glob patterns of files to include")
	f.StringSlice("exclude", nil, "glob patterns of files to exclude")
	f.Bool("continue-on-error", false, "keep going after a file fails")
	f.String("hint", "", "language code presumed likely")
	f.Int("top", 0, "keep only the best N languages per file (0 = all)")
	f.String("format", "", "output format: text, json or csv")
	f.StringP("output", "o", "", "write results to file instead of stdout")
	f.Bool("progress", false, "show a progress bar on stderr")
	f.BoolP("quiet", "q", false, "suppress the summary")
	bindFlag(f, "workers", "batch.workers")
	bindFlag(f, "recursive", "batch.recursive")
	bindFlag(f, "include", "batch.include")
	bindFlag(f, "exclude", "batch.exclude")
	bindFlag(f, "continue-on-error", "batch.continue_on_error")
	bindFlag(f, "hint", "identify.hint")
	bindFlag(f, "top", "identify.top")
	bindFlag(f, "format", "output.format")
	bindFlag(f, "output", "output.file")

	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	cfg := a.cfg.Batch
	files, err := batch.DiscoverFiles(args, cfg.Recursive, cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched in %v", args)
	}

	store, err := a.loadStore()
	if err != nil {
		return err
	}

	opts := a.cfg.ToIdentifyOptions()
	opts.HintMultiplier = 0

	bcfg := batch.Config{
		Workers:         cfg.Workers,
		Recursive:       cfg.Recursive,
		IncludePatterns: cfg.Include,
		ExcludePatterns: cfg.Exclude,
		ContinueOnError: cfg.ContinueOnError,
		Options:         opts,
		Logger:          a.logger,
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	if progress, _ := cmd.Flags().GetBool("progress"); progress && !quiet {
		bcfg.Progress = batch.NewConsoleProgress(cmd.ErrOrStderr(), "")
	}

	result, runErr := batch.ProcessBatch(cmd.Context(), files, store, bcfg)
	if result == nil {
		return fmt.Errorf("batch processing failed: %w", runErr)
	}

	w, closeOut, err := openOutput(cmd.OutOrStdout(), a.cfg.Output.File)
	if err != nil {
		return err
	}
	err = result.WriteResults(w, a.cfg.Output.Format, a.cfg.Output.ScorePrecision)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if !quiet {
		result.PrintStats(cmd.ErrOrStderr())
	}
	if runErr != nil {
		return fmt.Errorf("batch processing failed: %w", runErr)
	}
	return nil
}
