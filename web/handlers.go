package web

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/imagetype"
	"github.com/lexandro/iconview-mcp/importer"
	"github.com/lexandro/iconview-mcp/view"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	c, sel := s.state.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := view.Render(w, view.Build(c, sel)); err != nil {
		s.logger.Error("rendering viewer", "error", err)
	}
}

// handleSelect changes the selection and returns to the viewer.
// Without a folder parameter the selection becomes "all"; an empty
// folder value selects root-level icons.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sel := catalog.All()
	if query.Has("folder") {
		sel = catalog.Folder(query.Get("folder"))
	}
	s.state.Select(sel)
	s.logger.Debug("selection changed", "selection", sel.String())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	files, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.logger.Warn("upload rejected", "error", err)
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	next := importer.Import(files, s.refs, catalog.OriginUpload)
	s.onReplace(next)
	s.logger.Info("upload imported",
		"files", len(files),
		"icons", next.Len(),
		"folders", next.FolderCount(),
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "GET /export", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	c, sel := s.state.Snapshot()
	span.SetAttributes(attribute.String("export.selection", sel.String()))

	recorder := &statusRecorder{ResponseWriter: w}
	if _, err := s.Export(ctx, c, sel, export.ResponseDelivery{W: recorder}); err != nil {
		s.logger.Error("export download failed", "error", err, "trace_id", span.SpanContext().TraceID().String())
		if recorder.status == 0 {
			http.Error(w, "export failed", http.StatusInternalServerError)
		}
	}
}

// handleBlob serves the bytes behind a transient reference.
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	id, ok := blobref.ID(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := s.refs.Resolve(r.Context(), blobref.Prefix+id)
	if err != nil {
		if !errors.Is(err, blobref.ErrNotFound) {
			s.logger.Warn("reading blob", "id", id, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	mediaType, _ := s.refs.MediaType(blobref.Prefix + id)
	if mediaType == "" {
		mediaType = imagetype.Detect("", data)
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.Write(data)
}
