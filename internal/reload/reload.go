// Package reload keeps the active profile store current while the profile
// directory changes on disk.
package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MeKo-Tech/langid/internal/profile"
)

// DefaultDebounce is how long Watch waits after the last event before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// LoadFunc builds a fresh store.
type LoadFunc func() (*profile.Store, error)

// Holder owns the current store. Readers call Current for every request;
// reloads replace the store atomically and never block readers.
type Holder struct {
	load     LoadFunc
	logger   *slog.Logger
	current  atomic.Pointer[profile.Store]
	reloads  atomic.Int64
	failures atomic.Int64
	mu       sync.Mutex // serializes reloads

	// Debounce is the quiet period before a watched change triggers a reload.
	Debounce time.Duration
	// OnReload, when set, is called after every reload attempt.
	OnReload func(store *profile.Store, err error)
}

// NewHolder loads the initial store. The error of the first load is
// returned as is.
func NewHolder(load LoadFunc, logger *slog.Logger) (*Holder, error) {
	if load == nil {
		return nil, errors.New("reload: load function cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := load()
	if err != nil {
		return nil, err
	}
	h := &Holder{load: load, logger: logger, Debounce: DefaultDebounce}
	h.current.Store(store)
	return h, nil
}

// Static wraps a fixed store in a Holder that never reloads.
func Static(store *profile.Store) *Holder {
	h := &Holder{
		load:     func() (*profile.Store, error) { return store, nil },
		logger:   slog.Default(),
		Debounce: DefaultDebounce,
	}
	h.current.Store(store)
	return h
}

// Current returns the active store.
func (h *Holder) Current() *profile.Store {
	return h.current.Load()
}

// Reloads returns the number of successful and failed reloads.
func (h *Holder) Reloads() (ok, failed int64) {
	return h.reloads.Load(), h.failures.Load()
}

// Reload rebuilds the store. On failure the previous store stays active.
func (h *Holder) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	store, err := h.load()
	if err != nil {
		h.failures.Add(1)
		h.logger.Error("profile reload failed, keeping previous profiles", "error", err)
	} else {
		h.current.Store(store)
		h.reloads.Add(1)
		h.logger.Info("profiles reloaded", "languages", store.Len(), "max_length", store.MaxLength())
	}
	if h.OnReload != nil {
		h.OnReload(store, err)
	}
	return err
}

// Watch reloads the store whenever files below dir change, until ctx is
// done. Bursts of events within the debounce period cause one reload.
func (h *Holder) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("reload: create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := addTree(fw, dir); err != nil {
		return fmt.Errorf("reload: watch %s: %w", dir, err)
	}
	h.logger.Info("watching profile directory", "dir", dir)

	debounce := h.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(fw, event.Name)
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			h.logger.Debug("profile change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("profile watcher error", "error", err)

		case <-timer.C:
			_ = h.Reload()
		}
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
