// Package watcher reports changes under the icon root that call for a re-import.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lexandro/iconview-mcp/ignore"
	"github.com/lexandro/iconview-mcp/imagetype"
)

// DefaultDebounce is the quiet period before a batch of changes is emitted.
const DefaultDebounce = 250 * time.Millisecond

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher provides recursive file system watching with debouncing.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger
}

// NewWatcher creates a recursive file watcher on the given root directory.
// It registers all non-ignored subdirectories for watching.
func NewWatcher(rootDir string, ignoreChecker IgnoreChecker, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(debounce),
		ignoreChecker: ignoreChecker,
		rootDir:       rootDir,
		logger:        logger,
	}

	// Walk directory tree and add all non-ignored directories to the watcher
	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Run forwards file system events to the debouncer until ctx is done or
// the watcher is closed. Call this in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent converts a relevant fsnotify event into a debounced event.
// Relevant are supported images, ignore files, new directories (they may
// arrive already populated) and removals, which may take a whole folder.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.ignoreChecker.ShouldIgnoreDir(path) {
				return
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.debouncer.Add(path, OpCreate)
			return
		}
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	if !Relevant(path, op) || (!ignore.IsIgnoreFile(path) && w.ignoreChecker.ShouldIgnore(path)) {
		return
	}
	w.debouncer.Add(path, op)
}

// Relevant reports whether a change to path can alter the catalog.
func Relevant(path string, op EventOp) bool {
	if imagetype.IsSupported(path) || ignore.IsIgnoreFile(path) {
		return true
	}
	// A removed or renamed path may have been a directory of icons
	return op == OpRemove || op == OpRename
}

// IgnoreRulesChanged reports whether a batch touched a .gitignore or .iconignore,
// in which case the ignore matcher must be reloaded before re-importing.
func IgnoreRulesChanged(events []DebouncedEvent) bool {
	for _, event := range events {
		if ignore.IsIgnoreFile(event.Path) {
			return true
		}
	}
	return false
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
