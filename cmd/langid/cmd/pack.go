package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/langid/internal/profile"
	"github.com/MeKo-Tech/langid/internal/profilecache"
)

func newPackCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <cache-file>",
		Short: "Pack the profile directory into a cache file",
		Long: `Load every profile of the profile directory and store them in a single
cache file. Point profiles.cache_file (or --cache-file) at it to skip parsing
profile files on startup.

Examples:
  langid pack profiles.db --profiles ngrams
  langid identify --cache-file profiles.db --text "Hola"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Profiles.CacheFile != "" {
				return errors.New("pack reads the profile directory; unset the cache file")
			}
			dir := a.cfg.Profiles.Dir
			store, err := profile.LoadDir(dir, a.cfg.Profiles.Extension, a.storeConfig())
			if err != nil {
				return fmt.Errorf("failed to load profiles: %w", err)
			}
			if err := profilecache.Pack(args[0], store, dir); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Packed %d languages from %s into %s\n", store.Len(), dir, args[0])
			return nil
		},
	}
	return cmd
}
