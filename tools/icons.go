package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
)

// IconsArgs defines the input parameters for the iconview_icons tool.
type IconsArgs struct {
	Folder     string `json:"folder,omitempty" jsonschema:"Folder key to list. Empty uses the current selection, * lists all folders, (root) lists root-level icons"`
	Pattern    string `json:"pattern,omitempty" jsonschema:"Optional glob over relative paths (e.g. **/arrow-*.svg)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only relative paths without sizes"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of icons to return (default 50)"`
}

// IconsHandler holds the dependencies for the icons tool.
type IconsHandler struct {
	State             *catalog.State
	DefaultMaxResults int
	Logger            *slog.Logger
}

// Handle processes an iconview_icons request.
func (h *IconsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args IconsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	c, current := h.State.Snapshot()

	sel, err := resolveFolder(c, args.Folder, current)
	if err != nil {
		h.Logger.Info("iconview_icons unknown folder", "folder", args.Folder)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = h.DefaultMaxResults
	}

	pattern := args.Pattern
	if pattern == "" {
		pattern = "**"
	}
	icons, err := c.Match(pattern, sel, maxResults)
	if err != nil {
		h.Logger.Error("iconview_icons failed", "pattern", args.Pattern, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_icons",
		"selection", sel.String(),
		"pattern", args.Pattern,
		"results", len(icons),
		"elapsed", time.Since(start),
	)
	return textResult(FormatIcons(sel.Label(), icons, args.NameOnly)), nil, nil
}
