package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/langid/internal/identify"
)

type identifyOutput struct {
	Identified bool              `json:"identified"`
	Language   string            `json:"language,omitempty"`
	Results    []identify.Result `json:"results"`
}

func newIdentifyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify [text...]",
		Short: "Identify the language of a text",
		Long: `Rank every known language by how well its profile matches the text.

The text comes from --text, --text-file, the positional arguments, or stdin,
in that order. Each output row holds the language code, its score and its
share of the summed scores.

Examples:
  langid identify --text "Le renard brun"
  langid identify --text-file letter.txt --hint de --top 3
  echo "Привет мир" | langid identify --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIdentify(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringP("text", "t", "", "text to identify")
	f.StringP("text-file", "f", "", "file containing the text to identify")
	f.String("hint", "", "language code presumed likely")
	f.Float64("hint-multiplier", 0, "boost for the hinted language (0 = profile default)")
	f.Int("top", 0, "show only the best N languages (0 = all)")
	f.String("normalize", "", "Unicode normalization form applied to the text (NFC, NFKC, NFD, NFKD)")
	f.String("format", "", "output format: text or json")
	f.StringP("output", "o", "", "write results to file instead of stdout")
	f.Int("precision", 0, "decimals printed for scores")
	bindFlag(f, "hint", "identify.hint")
	bindFlag(f, "hint-multiplier", "identify.hint_multiplier")
	bindFlag(f, "top", "identify.top")
	bindFlag(f, "normalize", "identify.normalize")
	bindFlag(f, "format", "output.format")
	bindFlag(f, "output", "output.file")
	bindFlag(f, "precision", "output.score_precision")

	return cmd
}

func (a *app) runIdentify(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	store, err := a.loadStore()
	if err != nil {
		return err
	}

	opts := a.cfg.ToIdentifyOptions()
	// A hint multiplier given on the command line is per request; the
	// configured one is already the store default.
	if !cmd.Flags().Changed("hint-multiplier") {
		opts.HintMultiplier = 0
	}

	results, err := identify.Identify(store, text, opts)
	if err != nil {
		return err
	}
	a.logger.Debug("identified text", "runes", len([]rune(text)), "candidates", len(results))

	w, closeOut, err := openOutput(cmd.OutOrStdout(), a.cfg.Output.File)
	if err != nil {
		return err
	}

	switch a.cfg.Output.Format {
	case "json":
		out := identifyOutput{Identified: len(results) > 0, Results: results}
		if out.Identified {
			out.Language = results[0].Language
		}
		if out.Results == nil {
			out.Results = []identify.Result{}
		}
		err = writeJSON(w, out)
	case "", "text":
		if len(results) == 0 {
			_, err = fmt.Fprintln(w, "Could not identify the language of the text.")
		} else {
			err = identify.WriteTable(w, results, a.cfg.Output.ScorePrecision)
		}
	default:
		err = fmt.Errorf("unsupported output format for identify: %s", a.cfg.Output.Format)
	}

	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// readText picks the text to identify from the flags, the arguments or stdin.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		return text, nil
	}
	if path, _ := cmd.Flags().GetString("text-file"); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-selected input path
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("no text given: use --text, --text-file, arguments or stdin")
	}
	return string(data), nil
}
