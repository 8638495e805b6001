package tools

import (
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/importer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestState imports icons/a.png, icons/b.svg, other/c.jpg and root.ico.
func newTestState(t *testing.T) (*catalog.State, *blobref.Registry) {
	t.Helper()
	registry := blobref.NewRegistry()
	state := catalog.NewState(registry)
	state.Replace(importer.Import([]importer.File{
		{RelativePath: "icons/a.png", Source: blobref.BytesSource("\x89PNG\r\n\x1a\nrest"), SizeBytes: 12},
		{RelativePath: "icons/b.svg", Source: blobref.BytesSource("<svg/>"), SizeBytes: 6},
		{RelativePath: "other/c.jpg", Source: blobref.BytesSource("\xff\xd8\xffjpeg"), SizeBytes: 2048},
		{RelativePath: "root.ico", Source: blobref.BytesSource("ico"), SizeBytes: 3},
	}, registry, catalog.OriginDirectory))
	return state, registry
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	t.Fatal("expected text content in result")
	return ""
}
