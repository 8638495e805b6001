package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
)

// SelectArgs defines the input parameters for the iconview_select tool.
type SelectArgs struct {
	Folder string `json:"folder,omitempty" jsonschema:"Folder key to select. Empty or * selects all icons, (root) selects root-level icons"`
}

// SelectHandler holds the dependencies for the select tool.
type SelectHandler struct {
	State  *catalog.State
	Logger *slog.Logger
}

// Handle processes an iconview_select request. The selection is shared with
// the browser viewer and names the next export.
func (h *SelectHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SelectArgs) (*mcp.CallToolResult, any, error) {
	c := h.State.Catalog()

	sel, err := resolveFolder(c, args.Folder, catalog.All())
	if err != nil {
		h.Logger.Info("iconview_select unknown folder", "folder", args.Folder)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}
	h.State.Select(sel)

	count := len(c.VisibleIcons(sel))
	h.Logger.Info("iconview_select", "selection", sel.String(), "icons", count)

	return textResult(fmt.Sprintf("selected: %s (%d icons)", sel.Label(), count)), nil, nil
}
