package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/config"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/ignore"
	"github.com/lexandro/iconview-mcp/register"
	"github.com/lexandro/iconview-mcp/search"
	"github.com/lexandro/iconview-mcp/server"
	"github.com/lexandro/iconview-mcp/telemetry"
	"github.com/lexandro/iconview-mcp/tools"
	"github.com/lexandro/iconview-mcp/watcher"
	"github.com/lexandro/iconview-mcp/web"
)

const serviceName = "iconview-mcp"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "register":
			serverName := register.DeriveServerName(os.Args[0])
			if err := register.Run(serverName, os.Args[2:], os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "export":
			exit(runExport(os.Args[2:]))
			return
		}
	}

	exit(runServer(os.Args[1:]))
}

// exit reports err and terminates. Help output has already been printed by
// the flag set, so -h only sets the exit status.
func exit(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads ICONVIEW_* variables, then lets flags in args override them.
func loadConfig(name string, args []string) (config.Config, *flag.FlagSet, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, fs, nil
}

func runServer(args []string) error {
	cfg, _, err := loadConfig(serviceName, args)
	if err != nil {
		return err
	}
	if !cfg.MCP && cfg.HTTPAddr == "" {
		return errors.New("nothing to serve: enable -mcp or set -http")
	}

	// Logs go to a file or stderr, never stdout - stdout carries MCP stdio
	logger := setupLogger(cfg.LogLevel, cfg.DefaultLogFile())

	logger.Info("starting iconview-mcp",
		"root", cfg.Root,
		"http", cfg.HTTPAddr,
		"mcp", cfg.MCP,
		"maxFileSize", cfg.MaxFileSizeBytes,
		"maxResults", cfg.MaxResults,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	startTime := time.Now()

	refs := blobref.NewRegistry()
	state := catalog.NewState(refs)
	defer state.Close()
	names, err := search.NewNameIndex()
	if err != nil {
		return fmt.Errorf("creating name index: %w", err)
	}
	defer names.Close()

	lib := &library{
		rootDir: cfg.Root,
		state:   state,
		refs:    refs,
		names:   names,
		matcher: ignore.NewMatcher(ignore.MatcherOptions{
			RootDir:          cfg.Root,
			CustomPatterns:   cfg.Excludes,
			MaxFileSizeBytes: cfg.MaxFileSizeBytes,
		}),
		logger: logger,
	}

	// A failed initial import leaves an empty catalog; uploads still work
	iconCount, totalSize, err := lib.performImport()
	if err != nil {
		logger.Warn("initial import failed, starting with an empty catalog", "error", err)
	} else {
		logger.Info("initial import complete",
			"icons", iconCount,
			"totalSize", totalSize,
			"duration", time.Since(startTime),
		)
	}

	if cfg.Watch {
		fileWatcher, err := watcher.NewWatcher(cfg.Root, lib.matcher, watcher.DefaultDebounce, logger)
		if err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			go fileWatcher.Run(ctx)
			go handleWatcherEvents(fileWatcher.Events(), lib, logger)
			defer fileWatcher.Close()
		}
	}

	if cfg.SyncInterval > 0 {
		go runPeriodicSync(ctx, cfg.SyncInterval, lib, logger)
	}

	site := web.New(web.Options{
		State:             state,
		Refs:              refs,
		OnReplace:         lib.replace,
		ExportConcurrency: cfg.ExportConcurrency,
		Logger:            logger,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	viewerURL := ""
	if cfg.HTTPAddr != "" {
		viewerURL = "http://" + cfg.HTTPAddr + "/"
		group.Go(func() error {
			return site.ListenAndServe(groupCtx, cfg.HTTPAddr)
		})
	}

	if cfg.MCP {
		mcpServer := server.Setup(newHandlers(cfg, lib, site, startTime, viewerURL, logger))
		group.Go(func() error {
			logger.Info("MCP server starting on stdio")
			err := mcpServer.Run(groupCtx, &mcp.StdioTransport{})
			// The client closing stdin ends the session and the process with it
			stop()
			if err != nil && groupCtx.Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("iconview-mcp stopped")
	return nil
}

// newHandlers builds the MCP tool handlers over the shared library and viewer.
func newHandlers(cfg config.Config, lib *library, site *web.Server, startTime time.Time, viewerURL string, logger *slog.Logger) server.Handlers {
	return server.Handlers{
		Folders: &tools.FoldersHandler{State: lib.state, Logger: logger},
		Icons:   &tools.IconsHandler{State: lib.state, DefaultMaxResults: cfg.MaxResults, Logger: logger},
		Read:    &tools.ReadHandler{State: lib.state, Refs: lib.refs, Logger: logger},
		Select:  &tools.SelectHandler{State: lib.state, Logger: logger},
		Search: &tools.SearchHandler{
			Names:             lib.names,
			State:             lib.state,
			DefaultMaxResults: cfg.MaxResults,
			Logger:            logger,
		},
		Export: &tools.ExportHandler{
			State: lib.state,
			DoExport: func(ctx context.Context, c *catalog.Catalog, sel catalog.Selection) (export.Result, string, error) {
				delivery := export.FileDelivery{Dir: cfg.ExportDir}
				result, err := site.Export(ctx, c, sel, delivery)
				return result, delivery.Path(result.Filename), err
			},
			Logger: logger,
		},
		Status: &tools.StatusHandler{
			State:     lib.state,
			Names:     lib.names,
			Refs:      lib.refs,
			StartTime: startTime,
			RootDir:   cfg.Root,
			ExportDir: cfg.ExportDir,
			ViewerURL: viewerURL,
			Logger:    logger,
		},
		Reload: &tools.ReloadHandler{
			DoReload: func() (int, int64, string, error) {
				// Reload ignore rules in case .gitignore or .iconignore changed
				return lib.reload()
			},
			Logger: logger,
		},
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
