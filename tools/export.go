package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
)

// ExportArgs defines the input parameters for the iconview_export tool.
type ExportArgs struct {
	Folder string `json:"folder,omitempty" jsonschema:"Folder the export is named after. Empty uses the current selection, * names it after all icons. Every folder is always embedded"`
}

// ExportFunc exports a catalog under a selection and returns where the file was saved.
// It is provided by main.go to avoid circular dependencies.
type ExportFunc func(ctx context.Context, c *catalog.Catalog, sel catalog.Selection) (result export.Result, path string, err error)

// ExportHandler holds the dependencies for the export tool.
type ExportHandler struct {
	State    *catalog.State
	DoExport ExportFunc
	Logger   *slog.Logger
}

// Handle processes an iconview_export request.
func (h *ExportHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ExportArgs) (*mcp.CallToolResult, any, error) {
	c, current := h.State.Snapshot()

	sel, err := resolveFolder(c, args.Folder, current)
	if err != nil {
		h.Logger.Info("iconview_export unknown folder", "folder", args.Folder)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_export started", "selection", sel.String())
	result, path, err := h.DoExport(ctx, c, sel)
	if err != nil {
		h.Logger.Error("iconview_export failed", "error", err)
		return errorResult(fmt.Sprintf("Export error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_export complete",
		"path", path,
		"icons", result.Icons,
		"omitted", result.Omitted,
		"bytes", result.Bytes,
		"elapsed", result.Duration,
	)
	return textResult(FormatExportResult(result, path)), nil, nil
}
