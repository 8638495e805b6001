package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/tools"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers groups the tool handlers registered on the server.
type Handlers struct {
	Folders *tools.FoldersHandler
	Icons   *tools.IconsHandler
	Read    *tools.ReadHandler
	Select  *tools.SelectHandler
	Search  *tools.SearchHandler
	Export  *tools.ExportHandler
	Status  *tools.StatusHandler
	Reload  *tools.ReloadHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "iconview-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server holds an in-memory catalog of the icons under a directory, grouped by containing folder, and shares it with a local browser viewer.

- Use iconview_folders to see the folder list and the current selection
- Use iconview_icons or iconview_search to find icons, iconview_read to look at one
- Use iconview_select to change what the viewer shows
- Use iconview_export to save a single self-contained HTML viewer of every icon
- The catalog reloads automatically when icons change on disk (via filesystem watcher)`,
		},
	)

	// Register iconview_folders tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "iconview_folders",
		Description: "List the icon folders with their icon counts. The entry marked * is the current selection.",
	}, handlers.Folders.Handle)

	// Register iconview_icons tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "iconview_icons",
		Description: `List icons of a folder, in import order.

Folder values:
  - "" - the current selection
  - "*" - every folder, in folder order
  - "(root)" - icons directly under the root directory
  - "brand/logos" - a folder key as listed by iconview_folders

pattern filters relative paths with a glob (e.g. "**/arrow-*.svg").`,
	}, handlers.Icons.Handle)

	// Register iconview_read tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "iconview_read",
		Description: "Return one icon as image content, by relative path (e.g. icons/arrow.svg).",
	}, handlers.Read.Handle)

	// Register iconview_select tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "iconview_select",
		Description: `Change the current selection shown by the viewer. Empty or "*" selects all icons, "(root)" selects root-level icons.`,
	}, handlers.Select.Handle)

	// Register iconview_search tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "iconview_search",
		Description: `Search icon names and folders using an in-memory full-text index.

Query formats:
  - Plain text: word match on names and folders, plus name prefix match (e.g. "arrow")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching on indexed terms (e.g. "/arrow-(up|down)/")`,
	}, handlers.Search.Handle)

	// Register iconview_export tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "iconview_export",
		Description: `Export every imported icon as one self-contained, interactive HTML file saved to the export directory.

The file embeds all icons as data URIs and the viewer styles, opens without network access, and is named after the selection (e.g. "icons_iconview.html", "all-icons_iconview.html").`,
	}, handlers.Export.Handle)

	// Register iconview_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "iconview_status",
		Description: "Show catalog status: icon and folder counts, selection, size, memory usage, and uptime.",
	}, handlers.Status.Handle)

	// Register iconview_reload tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "iconview_reload",
		Description: "Re-import the root directory from scratch, replacing the current catalog and resetting the selection.",
	}, handlers.Reload.Handle)

	return mcpServer
}
