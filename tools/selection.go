package tools

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/catalog"
)

// AllFolders selects every folder in tool arguments.
const AllFolders = "*"

// resolveFolder maps a folder argument to a selection: "*" is "all",
// catalog.RootLabel is the root key and empty falls back to def.
// Unknown folders are rejected.
func resolveFolder(c *catalog.Catalog, folder string, def catalog.Selection) (catalog.Selection, error) {
	switch folder {
	case "":
		return def, nil
	case AllFolders:
		return catalog.All(), nil
	case catalog.RootLabel:
		folder = ""
	}
	if !c.Has(folder) {
		return catalog.Selection{}, fmt.Errorf("folder not found: %s", catalog.FolderLabel(folder))
	}
	return catalog.Folder(folder), nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
