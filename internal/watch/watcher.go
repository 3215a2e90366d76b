// Package watch re-runs a callback when files below a packages directory
// change, coalescing bursts of events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
)

// DefaultDebounce is the quiet period used when none is configured
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher
type Config struct {
	// Root is the directory to watch, recursively
	Root     string
	Debounce time.Duration
	// OnChange receives the changed paths relative to Root, sorted
	OnChange func(ctx context.Context, changed []string) error
	Logger   interfaces.Logger
}

// Watcher watches a directory tree
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   interfaces.Logger
}

// New creates a watcher and registers every directory below cfg.Root
func New(cfg Config) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, errors.New("watch: OnChange is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		debounce: debounce,
		logger:   interfaces.OrNoOp(cfg.Logger),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers change batches until ctx is done. Callback errors are logged
// and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	//nolint:errcheck // best-effort cleanup
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			if isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						w.logger.Warn("Failed to watch new directory",
							interfaces.F("path", evt.Name),
							interfaces.F("error", err))
					}
				}
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("Change handler failed", interfaces.F("error", err))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Warn("fsnotify error", interfaces.F("error", err))
		}
	}
}

// addTree adds dir and its subdirectories to the fsnotify watcher
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Skipping inaccessible path",
				interfaces.F("path", path),
				interfaces.F("error", err))
			return nil //nolint:nilerr // intentional skip of inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// isIgnored skips hidden files and editor temporaries
func isIgnored(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	base := filepath.Base(rel)
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}
