package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/importer"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingIcons  int // icons on disk but not in the catalog
	StaleIcons    int // icons in the catalog but not on disk
	ModifiedIcons int // icons whose size or ModTime differs
	Reimported    bool
	Skipped       bool // the catalog came from an upload
	Duration      time.Duration
}

// Discrepancies returns the number of out-of-sync icons.
func (r SyncResult) Discrepancies() int {
	return r.MissingIcons + r.StaleIcons + r.ModifiedIcons
}

// runPeriodicSync verifies catalog consistency at the given interval,
// catching changes the watcher missed. It runs until ctx is done.
func runPeriodicSync(ctx context.Context, interval time.Duration, lib *library, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := performSyncVerification(lib, logger)
			if result.Discrepancies() > 0 {
				logger.Info("sync verification complete",
					"missing", result.MissingIcons,
					"stale", result.StaleIcons,
					"modified", result.ModifiedIcons,
					"reimported", result.Reimported,
					"duration", result.Duration,
				)
			} else {
				logger.Debug("sync verification complete, catalog is in sync", "duration", result.Duration)
			}
		}
	}
}

// performSyncVerification compares the root directory with the current
// catalog and re-imports when they differ. Uploaded catalogs are skipped.
func performSyncVerification(lib *library, logger *slog.Logger) SyncResult {
	result, err := lib.refresh()
	if err != nil {
		logger.Warn("sync verification failed", "error", err)
	}
	return result
}

// compareWithDisk counts the differences between walked files and a catalog.
func compareWithDisk(files []importer.File, c *catalog.Catalog) SyncResult {
	var result SyncResult

	catalogued := make(map[string]catalog.IconRecord, c.Len())
	for _, icon := range c.VisibleIcons(catalog.All()) {
		catalogued[icon.RelativePath] = icon
	}

	onDisk := make(map[string]bool, len(files))
	for _, file := range files {
		onDisk[file.RelativePath] = true

		icon, exists := catalogued[file.RelativePath]
		switch {
		case !exists:
			result.MissingIcons++
		case icon.SizeBytes != file.SizeBytes || !icon.ModTime.Equal(file.ModTime):
			result.ModifiedIcons++
		}
	}

	for relPath := range catalogued {
		if !onDisk[relPath] {
			result.StaleIcons++
		}
	}
	return result
}
