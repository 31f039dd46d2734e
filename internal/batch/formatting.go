package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/langid/internal/identify"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

type jsonOutput struct {
	Files []FileResult `json:"files"`
}

// WriteResults renders the batch result in the requested format.
func (r *Result) WriteResults(w io.Writer, format string, precision int) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return r.writeText(w, precision)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOutput{Files: r.Files})
	case FormatCSV:
		return r.writeCSV(w, precision)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Result) writeText(w io.Writer, precision int) error {
	for i, f := range r.Files {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", f.File); err != nil {
			return err
		}
		if f.Err != nil {
			if _, err := fmt.Fprintf(w, "error: %v\n", f.Err); err != nil {
				return err
			}
			continue
		}
		if err := identify.WriteTable(w, f.Results, precision); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) writeCSV(w io.Writer, precision int) error {
	if precision < 0 {
		precision = identify.DefaultPrecision
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"file", "rank", "language", "score", "share", "error"}); err != nil {
		return err
	}
	for _, f := range r.Files {
		if f.Err != nil || len(f.Results) == 0 {
			if err := cw.Write([]string{f.File, "", "", "", "", f.Error}); err != nil {
				return err
			}
			continue
		}
		for i, res := range f.Results {
			row := []string{
				f.File,
				strconv.Itoa(i + 1),
				res.Language,
				strconv.FormatFloat(res.Score, 'f', precision, 64),
				strconv.FormatFloat(res.Share, 'f', precision, 64),
				"",
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveResults writes the result to outputFile, or to stdout when it is empty.
func (r *Result) SaveResults(outputFile, format string, precision int) error {
	if outputFile == "" {
		return r.WriteResults(os.Stdout, format, precision)
	}

	f, err := os.Create(outputFile) //nolint:gosec // user-selected output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := r.WriteResults(f, format, precision); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// PrintStats writes a short human readable summary.
func (r *Result) PrintStats(w io.Writer) {
	s := r.Stats()
	_, _ = fmt.Fprintf(w, "Processed %d files in %v with %d workers\n",
		s.Total, r.Duration.Round(time.Millisecond), r.Workers)
	_, _ = fmt.Fprintf(w, "Identified: %d, unmatched: %d, failed: %d\n", s.Identified, s.Unmatched, s.Failed)
	for _, code := range sortedLanguages(s.Languages) {
		_, _ = fmt.Fprintf(w, "  %-5s %d\n", code, s.Languages[code])
	}
}

func sortedLanguages(m map[string]int) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
