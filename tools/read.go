package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/imagetype"
)

// ReadArgs defines the input parameters for the iconview_read tool.
type ReadArgs struct {
	Path string `json:"path" jsonschema:"Relative path of the icon (e.g. icons/arrow.svg)"`
}

// ReadHandler holds the dependencies for the read tool.
type ReadHandler struct {
	State  *catalog.State
	Refs   export.RefResolver
	Logger *slog.Logger
}

// Handle processes an iconview_read request, returning the icon as image content.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("iconview_read called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	icon, ok := h.State.Catalog().Find(args.Path)
	if !ok {
		h.Logger.Info("iconview_read icon not found", "path", args.Path)
		return errorResult(fmt.Sprintf("Icon not found: %s", args.Path)), nil, nil
	}

	data, err := h.Refs.Resolve(ctx, icon.ContentRef)
	if err != nil {
		h.Logger.Error("iconview_read failed", "path", args.Path, "error", err)
		return errorResult(fmt.Sprintf("Read error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_read", "path", args.Path, "bytes", len(data), "elapsed", time.Since(start))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: imagetype.Detect(icon.Name, data)},
			&mcp.TextContent{Text: fmt.Sprintf("%s (%s)", icon.RelativePath, formatFileSize(int64(len(data))))},
		},
	}, nil, nil
}
