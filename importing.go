package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/ignore"
	"github.com/lexandro/iconview-mcp/importer"
	"github.com/lexandro/iconview-mcp/search"
	"github.com/lexandro/iconview-mcp/watcher"
)

// library owns the catalog lifecycle: directory imports, browser uploads and
// the search index that follows every replacement.
type library struct {
	rootDir string
	state   *catalog.State
	refs    *blobref.Registry
	names   *search.NameIndex
	matcher *ignore.Matcher
	logger  *slog.Logger

	// mu serializes catalog replacements so the search index matches the state
	mu sync.Mutex
}

// replace installs a catalog built elsewhere, such as from an upload.
func (l *library) replace(c *catalog.Catalog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceLocked(c)
}

func (l *library) replaceLocked(c *catalog.Catalog) {
	l.state.Replace(c)
	if err := l.names.Rebuild(c); err != nil {
		l.logger.Warn("rebuilding name index failed, search may be stale", "error", err)
	}
}

// performImport walks the root directory and replaces the catalog with its icons.
// Returns the number of icons imported and their total size.
func (l *library) performImport() (int, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := importer.Walk(l.rootDir, l.matcher)
	if err != nil {
		return 0, 0, fmt.Errorf("importing %s: %w", l.rootDir, err)
	}
	next := importer.Import(files, l.refs, catalog.OriginDirectory)
	l.replaceLocked(next)
	return next.Len(), next.TotalSizeBytes(), nil
}

// reload re-reads ignore rules and re-imports the root directory.
func (l *library) reload() (int, int64, string, error) {
	start := time.Now()
	l.matcher.Reload()
	count, size, err := l.performImport()
	if err != nil {
		return 0, 0, "", err
	}
	return count, size, time.Since(start).Round(time.Millisecond).String(), nil
}

// refresh re-imports the root directory only when it differs from the
// catalog, so unrelated changes keep the selection and live refs intact.
// A catalog from a browser upload is left alone. The origin check, the
// comparison and the replacement all happen under one lock.
func (l *library) refresh() (SyncResult, error) {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.state.Catalog()
	if current.Origin() == catalog.OriginUpload {
		return SyncResult{Skipped: true, Duration: time.Since(start)}, nil
	}

	files, err := importer.Walk(l.rootDir, l.matcher)
	if err != nil {
		return SyncResult{Duration: time.Since(start)}, fmt.Errorf("walking %s: %w", l.rootDir, err)
	}

	result := compareWithDisk(files, current)
	if result.Discrepancies() > 0 {
		l.replaceLocked(importer.Import(files, l.refs, catalog.OriginDirectory))
		result.Reimported = true
	}
	result.Duration = time.Since(start)
	return result, nil
}

// handleWatcherEvents refreshes the catalog for every debounced batch of changes.
func handleWatcherEvents(events <-chan []watcher.DebouncedEvent, lib *library, logger *slog.Logger) {
	for batch := range events {
		for _, event := range batch {
			relPath, _ := filepath.Rel(lib.rootDir, event.Path)
			logger.Debug("change detected", "path", filepath.ToSlash(relPath), "op", event.Op)
		}

		if watcher.IgnoreRulesChanged(batch) {
			lib.matcher.Reload()
			logger.Info("reloaded ignore rules")
		}

		result, err := lib.refresh()
		switch {
		case err != nil:
			logger.Warn("re-import failed", "error", err)
		case result.Skipped:
			logger.Debug("skipping re-import, catalog comes from an upload", "changes", len(batch))
		case result.Reimported:
			logger.Info("re-imported after changes",
				"changes", len(batch),
				"missing", result.MissingIcons,
				"stale", result.StaleIcons,
				"modified", result.ModifiedIcons,
				"icons", lib.state.Catalog().Len(),
			)
		default:
			logger.Debug("changes did not affect the catalog", "changes", len(batch))
		}
	}
}
