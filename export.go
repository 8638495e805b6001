package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/ignore"
	"github.com/lexandro/iconview-mcp/importer"
	"github.com/lexandro/iconview-mcp/telemetry"
	"github.com/lexandro/iconview-mcp/web"
)

// runExport imports the root directory once and saves a standalone viewer.
// Usage: iconview-mcp export [flags] [folder]
func runExport(args []string) error {
	cfg, fs, err := loadConfig(serviceName+" export", args)
	if err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one folder, got %d arguments", fs.NArg())
	}

	// One-shot runs log to stderr unless a file is requested
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer shutdownTracing(context.Background())
	}

	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          cfg.Root,
		CustomPatterns:   cfg.Excludes,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	})
	files, err := importer.Walk(cfg.Root, matcher)
	if err != nil {
		return fmt.Errorf("importing %s: %w", cfg.Root, err)
	}

	refs := blobref.NewRegistry()
	state := catalog.NewState(refs)
	defer state.Close()
	state.Replace(importer.Import(files, refs, catalog.OriginDirectory))

	c := state.Catalog()
	sel, err := exportSelection(c, fs.Arg(0))
	if err != nil {
		return err
	}

	site := web.New(web.Options{
		State:             state,
		Refs:              refs,
		ExportConcurrency: cfg.ExportConcurrency,
		Logger:            logger,
	})
	delivery := export.FileDelivery{Dir: cfg.ExportDir}
	result, err := site.Export(ctx, c, sel, delivery)
	if err != nil {
		return err
	}

	printExportResult(os.Stdout, result, delivery.Path(result.Filename))
	return nil
}

// exportSelection maps a folder argument to a selection. An empty argument or
// "*" selects all icons and the root label selects root-level icons.
func exportSelection(c *catalog.Catalog, folder string) (catalog.Selection, error) {
	switch folder {
	case "", "*":
		return catalog.All(), nil
	case catalog.RootLabel:
		folder = ""
	}
	if !c.Has(folder) {
		return catalog.Selection{}, fmt.Errorf("folder not found: %s", catalog.FolderLabel(folder))
	}
	return catalog.Folder(folder), nil
}

func printExportResult(w io.Writer, result export.Result, path string) {
	fmt.Fprintf(w, "Exported %d icons from %d folders to %s\n", result.Icons, result.Folders, path)
	if result.Omitted > 0 {
		fmt.Fprintf(w, "Omitted %d icons that could not be read\n", result.Omitted)
	}
	if result.Fallback {
		fmt.Fprintf(w, "Catalog was empty, saved a copy of the viewer page\n")
	}
}
