package identify

import (
	"fmt"
	"io"
)

// DefaultPrecision is the number of decimals printed for scores and shares.
const DefaultPrecision = 6

// WriteTable prints one "<code> <score> <share%>" row per result.
func WriteTable(w io.Writer, results []Result, precision int) error {
	if precision < 0 {
		precision = DefaultPrecision
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%-5s    %.*f    %.*f%%\n",
			r.Language, precision, r.Score, precision, r.Share*100); err != nil {
			return err
		}
	}
	return nil
}
