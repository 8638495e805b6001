package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/search"
)

// StatusArgs defines the input parameters for the iconview_status tool (none required).
type StatusArgs struct{}

// RefCounter reports how many transient references are live.
type RefCounter interface {
	Len() int
}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	State     *catalog.State
	Names     *search.NameIndex
	Refs      RefCounter
	StartTime time.Time
	RootDir   string
	ExportDir string
	ViewerURL string
	Logger    *slog.Logger
}

// Handle processes an iconview_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	c, sel := h.State.Snapshot()
	totalSize := c.TotalSizeBytes()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("iconview_status",
		"icons", c.Len(),
		"folders", c.FolderCount(),
		"totalSize", totalSize,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	origin := string(c.Origin())
	if origin == "" {
		origin = "none"
	}

	builder.WriteString("=== iconview-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("Export directory: %s\n", h.ExportDir))
	if h.ViewerURL != "" {
		builder.WriteString(fmt.Sprintf("Viewer: %s\n", h.ViewerURL))
	}
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Catalog source: %s\n", origin))
	builder.WriteString(fmt.Sprintf("Icons: %d in %d folders\n", c.Len(), c.FolderCount()))
	builder.WriteString(fmt.Sprintf("Selection: %s\n", sel.Label()))
	if h.Names != nil {
		builder.WriteString(fmt.Sprintf("Search-indexed icons: %d\n", h.Names.DocumentCount()))
	}
	if h.Refs != nil {
		builder.WriteString(fmt.Sprintf("Live references: %d\n", h.Refs.Len()))
	}
	builder.WriteString(fmt.Sprintf("Total icon size: %s\n", formatFileSize(totalSize)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	counts := c.FolderCounts()
	if len(counts) > 0 {
		builder.WriteString("\nFolders:\n")
		for _, key := range folderBreakdown(counts) {
			builder.WriteString(fmt.Sprintf("  %-30s %d icons\n", catalog.FolderLabel(key), counts[key]))
		}
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
