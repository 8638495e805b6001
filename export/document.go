package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/lexandro/iconview-mcp/catalog"
)

//go:embed templates/export.html
var templateFS embed.FS

var documentTemplate = template.Must(template.New("export.html").ParseFS(templateFS, "templates/export.html"))

// Document is the input of Assemble.
type Document struct {
	Styles  string
	Folders []FolderData
}

type folderBlock struct {
	Key  string
	JSON template.JS
}

type documentData struct {
	Styles    template.CSS
	Folders   []folderBlock
	AllLabel  string
	RootLabel string
}

// Assemble renders the standalone viewer: a static skeleton, the inlined
// style block, one JSON block per folder and the inline renderer script.
// The result references no external resources.
func Assemble(doc Document) ([]byte, error) {
	data := documentData{
		Styles:    template.CSS(escapeStyleText(doc.Styles)),
		Folders:   make([]folderBlock, 0, len(doc.Folders)),
		AllLabel:  catalog.AllLabel,
		RootLabel: catalog.RootLabel,
	}
	for _, folder := range doc.Folders {
		icons := folder.Icons
		if icons == nil {
			icons = []ExportedIcon{}
		}
		// json.Marshal escapes <, > and &, so the block cannot close its script element
		encoded, err := json.Marshal(icons)
		if err != nil {
			return nil, fmt.Errorf("encoding folder %q: %w", folder.Key, err)
		}
		data.Folders = append(data.Folders, folderBlock{Key: folder.Key, JSON: template.JS(encoded)})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}
	return buf.Bytes(), nil
}

// escapeStyleText keeps inlined CSS from terminating its <style> element.
func escapeStyleText(css string) string {
	return strings.ReplaceAll(css, "</style", `<\/style`)
}
