package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/langid/internal/profile"
	"github.com/MeKo-Tech/langid/internal/profilecache"
)

// storeConfig returns the store settings of the loaded configuration.
func (a *app) storeConfig() profile.StoreConfig {
	cfg := a.cfg.ToStoreConfig()
	cfg.Logger = a.logger
	return cfg
}

// loadStore loads the profiles from the cache file when one is configured,
// otherwise from the profile directory.
func (a *app) loadStore() (*profile.Store, error) {
	if path := a.cfg.Profiles.CacheFile; path != "" {
		store, err := profilecache.LoadStore(path, a.storeConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to load profile cache: %w", err)
		}
		a.logger.Debug("loaded profile cache", "path", path, "languages", store.Len())
		return store, nil
	}

	store, err := profile.LoadDir(a.cfg.Profiles.Dir, a.cfg.Profiles.Extension, a.storeConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return store, nil
}

// openOutput returns stdout-like w when path is empty, otherwise a created
// file. The returned close func must be called.
func openOutput(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path) //nolint:gosec // user-selected output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
