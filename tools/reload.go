package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReloadArgs defines the input parameters for the iconview_reload tool.
type ReloadArgs struct{}

// ReloadFunc is the function signature for the reload operation.
// It is provided by main.go to avoid circular dependencies.
type ReloadFunc func() (iconCount int, totalSize int64, elapsed string, err error)

// ReloadHandler holds the dependencies for the reload tool.
type ReloadHandler struct {
	DoReload ReloadFunc
	Logger   *slog.Logger
}

// Handle processes an iconview_reload request.
func (h *ReloadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReloadArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("iconview_reload started")

	iconCount, totalSize, elapsed, err := h.DoReload()
	if err != nil {
		h.Logger.Error("iconview_reload failed", "error", err)
		return errorResult(fmt.Sprintf("Reload error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_reload complete",
		"icons", iconCount,
		"totalSize", totalSize,
		"elapsed", elapsed,
	)

	return textResult(fmt.Sprintf("reloaded: %d icons (%s) in %s",
		iconCount, formatFileSize(totalSize), elapsed)), nil, nil
}
