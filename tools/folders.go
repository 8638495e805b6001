package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
)

// FoldersArgs defines the input parameters for the iconview_folders tool (none required).
type FoldersArgs struct{}

// FoldersHandler holds the dependencies for the folders tool.
type FoldersHandler struct {
	State  *catalog.State
	Logger *slog.Logger
}

// Handle processes an iconview_folders request.
func (h *FoldersHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FoldersArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	c, sel := h.State.Snapshot()

	h.Logger.Info("iconview_folders",
		"folders", c.FolderCount(),
		"icons", c.Len(),
		"selection", sel.String(),
		"elapsed", time.Since(start),
	)
	return textResult(FormatFolders(c, sel)), nil, nil
}
