package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/search"
)

// SearchArgs defines the input parameters for the iconview_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Search query. Plain text for word or name prefix match, quoted for exact phrase, /regex/ for regular expression"`
	Folder     string `json:"folder,omitempty" jsonschema:"Optional folder key to search in, (root) for root-level icons. Empty searches all folders"`
	FileGlob   string `json:"fileGlob,omitempty" jsonschema:"Optional glob pattern to filter relative paths (e.g. **/*.svg)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of icons to return (default 50)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Names             *search.NameIndex
	State             *catalog.State
	DefaultMaxResults int
	Logger            *slog.Logger
}

// Handle processes an iconview_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("iconview_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	sel, err := resolveFolder(h.State.Catalog(), args.Folder, catalog.All())
	if err != nil {
		h.Logger.Info("iconview_search unknown folder", "folder", args.Folder)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = h.DefaultMaxResults
	}

	hits, total, err := h.Names.Search(search.SearchOptions{
		Query:      args.Query,
		Selection:  sel,
		FileGlob:   args.FileGlob,
		MaxResults: maxResults,
	})
	if err != nil {
		h.Logger.Error("iconview_search failed", "query", args.Query, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("iconview_search",
		"query", args.Query,
		"selection", sel.String(),
		"fileGlob", args.FileGlob,
		"results", len(hits),
		"total", total,
		"elapsed", time.Since(start),
	)
	return textResult(FormatSearchHits(hits, total)), nil, nil
}
