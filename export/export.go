// Package export produces a standalone, self-rendering HTML copy of the icon viewer.
//
// The primary path embeds every icon of the catalog as a data URI in one JSON
// block per folder, next to an inline script that rebuilds the folder list and
// grid on selection change. When the catalog is empty the rendered viewer page
// is cloned instead. Stylesheet and icon fetches are independent best-effort
// tasks; only document assembly and delivery can fail an export.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lexandro/iconview-mcp/catalog"
)

var tracer = otel.Tracer("github.com/lexandro/iconview-mcp/export")

// DefaultConcurrency bounds parallel fetch and encode tasks.
const DefaultConcurrency = 16

// RefResolver reads the bytes behind a transient reference.
type RefResolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// Page is the presentation context an export is taken from: the rendered
// viewer markup and the URL it was served at, used to resolve stylesheet links.
type Page struct {
	URL  string
	HTML []byte
}

// Exporter holds the collaborators of the export pipeline.
type Exporter struct {
	Refs        RefResolver
	Fetcher     Fetcher
	Concurrency int
	Logger      *slog.Logger
}

// Result summarizes a finished export.
type Result struct {
	Filename      string
	Folders       int
	Icons         int
	Omitted       int // icons whose bytes could not be resolved
	StylesInlined int
	StylesSkipped int
	Fallback      bool // the page was cloned because the catalog was empty
	Bytes         int
	Duration      time.Duration
}

// Export builds the standalone document for a catalog and selection and hands
// it to delivery. Inputs are never mutated. The returned error is non-nil only
// when the document cannot be assembled or delivered; it names the attempted file.
func (e *Exporter) Export(ctx context.Context, c *catalog.Catalog, sel catalog.Selection, page Page, delivery Delivery) (Result, error) {
	start := time.Now()
	if c == nil {
		c = catalog.Empty()
	}

	result := Result{Filename: Filename(sel)}
	ctx, span := tracer.Start(ctx, "export")
	defer span.End()
	span.SetAttributes(
		attribute.String("export.filename", result.Filename),
		attribute.String("export.selection", sel.String()),
		attribute.Int("export.catalog_icons", c.Len()),
	)

	styles := e.InlineStyles(ctx, page)
	result.StylesInlined = styles.Inlined
	result.StylesSkipped = styles.Skipped

	var payload []byte
	var err error
	if c.IsEmpty() {
		result.Fallback = true
		payload, err = e.cloneDocument(ctx, page, styles)
	} else {
		folders, omitted := e.Materialize(ctx, c)
		result.Folders = len(folders)
		result.Omitted = omitted
		for _, folder := range folders {
			result.Icons += len(folder.Icons)
		}
		payload, err = Assemble(Document{Styles: styles.CSS, Folders: folders})
	}
	if err == nil {
		result.Bytes = len(payload)
		err = delivery.Deliver(ctx, Artifact{Filename: result.Filename, Payload: payload, MediaType: MediaType})
	}
	result.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		e.logger().Error("export failed", "filename", result.Filename, "error", err)
		return result, fmt.Errorf("export %s: %w", result.Filename, err)
	}

	span.SetAttributes(
		attribute.Int("export.icons", result.Icons),
		attribute.Int("export.omitted", result.Omitted),
		attribute.Bool("export.fallback", result.Fallback),
	)
	e.logger().Info("export complete",
		"filename", result.Filename,
		"folders", result.Folders,
		"icons", result.Icons,
		"omitted", result.Omitted,
		"styles", result.StylesInlined,
		"fallback", result.Fallback,
		"bytes", result.Bytes,
		"duration", result.Duration,
	)
	return result, nil
}

func (e *Exporter) concurrency() int {
	if e.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return e.Concurrency
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}
