package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type languageOutput struct {
	Code      string `json:"code"`
	Ngrams    int    `json:"ngrams"`
	MaxLength int    `json:"max_length"`
	Source    string `json:"source"`
}

func newLanguagesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the loaded language profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}

			langs := store.Languages()
			if a.cfg.Output.Format == "json" {
				out := make([]languageOutput, len(langs))
				for i, l := range langs {
					out[i] = languageOutput{Code: l.Code(), Ngrams: l.Len(), MaxLength: l.MaxLength(), Source: l.Source()}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			for _, l := range langs {
				if _, err := fmt.Fprintf(w, "%-5s %8d n-grams  max %d  %s\n", l.Code(), l.Len(), l.MaxLength(), l.Source()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "output format: text or json")
	bindFlag(cmd.Flags(), "format", "output.format")
	return cmd
}
