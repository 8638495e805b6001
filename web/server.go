// Package web serves the icon viewer to a local browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/view"
)

var tracer = otel.Tracer("github.com/lexandro/iconview-mcp/web")

// PageURL is the address the viewer page is rendered for when exporting.
// Stylesheets are fetched in-process, so the host is never dialed.
const PageURL = "http://iconview.local/"

// DefaultMaxUploadBytes bounds the body of a folder upload.
const DefaultMaxUploadBytes int64 = 512 << 20

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	State             *catalog.State
	Refs              *blobref.Registry
	OnReplace         func(c *catalog.Catalog) // called instead of State.Replace after an upload
	ExportConcurrency int
	MaxUploadBytes    int64
	Logger            *slog.Logger
}

// Server hosts the viewer pages, the upload endpoint, icon bytes and exports.
type Server struct {
	state          *catalog.State
	refs           *blobref.Registry
	onReplace      func(c *catalog.Catalog)
	exporter       *export.Exporter
	maxUploadBytes int64
	logger         *slog.Logger
	handler        http.Handler
}

// New builds a Server and its routes.
func New(options Options) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		state:          options.State,
		refs:           options.Refs,
		onReplace:      options.OnReplace,
		maxUploadBytes: options.MaxUploadBytes,
		logger:         logger,
	}
	if s.onReplace == nil {
		s.onReplace = s.state.Replace
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /select", s.handleSelect)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /blob/{id}", s.handleBlob)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.StaticFS())))
	s.handler = s.logRequests(mux)

	s.exporter = &export.Exporter{
		Refs:        options.Refs,
		Fetcher:     export.HandlerFetcher{Handler: mux},
		Concurrency: options.ExportConcurrency,
		Logger:      logger,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Page renders the viewer for a catalog and selection, as an export starts from it.
func (s *Server) Page(c *catalog.Catalog, sel catalog.Selection) (export.Page, error) {
	html, err := view.RenderBytes(view.Build(c, sel))
	if err != nil {
		return export.Page{}, err
	}
	return export.Page{URL: PageURL, HTML: html}, nil
}

// Export renders the viewer page for the selection and runs the export
// pipeline against it. A page that fails to render only disables the
// clone fallback's source; the export itself still runs.
func (s *Server) Export(ctx context.Context, c *catalog.Catalog, sel catalog.Selection, delivery export.Delivery) (export.Result, error) {
	page, err := s.Page(c, sel)
	if err != nil {
		s.logger.Debug("export: rendering page failed", "error", err)
	}
	return s.exporter.Export(ctx, c, sel, page, delivery)
}

// ListenAndServe runs the HTTP server until ctx ends, then drains in-flight
// requests within a bounded shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	s.logger.Info("viewer listening", "addr", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// statusRecorder remembers the status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"elapsed", time.Since(start).Round(time.Microsecond).String(),
		)
	})
}
