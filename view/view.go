// Package view renders the folder navigation and icon grid of the viewer.
//
// Everything here is a pure function of a catalog and a selection: Build
// derives the page model, Render writes it as HTML. The page links one
// stylesheet, StylesheetPath, served from the embedded static files.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/datauri"
	"github.com/lexandro/iconview-mcp/imagetype"
)

// GridColumns is the fixed number of icon cards per grid row.
const GridColumns = 8

// StylesheetPath is where the viewer stylesheet is served.
const StylesheetPath = "/static/viewer.css"

// EmptyMessage is shown in place of the grid when no icons are visible.
const EmptyMessage = "No icons in this folder"

//go:embed templates/viewer.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.New("viewer.html").ParseFS(templateFS, "templates/viewer.html"))

// NavEntry is one line of the folder list.
type NavEntry struct {
	Label  string
	Href   string
	Count  int
	Active bool
}

// Card is one icon in the grid.
type Card struct {
	Name string
	Src  template.URL // "/blob/<id>" or a data URI, both produced in-process
}

// Page is the rendered state of the viewer.
type Page struct {
	Title      string
	Count      int
	Nav        []NavEntry
	Cards      []Card
	Columns    int
	Stylesheet string
	Empty      bool
	EmptyText  string
	// Extensions lists the file types the upload control sends, comma separated
	Extensions string
}

// Build derives the page model for a catalog and selection.
// The "all" entry always comes first, followed by folders in sorted order.
func Build(c *catalog.Catalog, sel catalog.Selection) Page {
	folders := c.ListFolders()
	counts := c.FolderCounts()

	nav := make([]NavEntry, 0, len(folders)+1)
	nav = append(nav, NavEntry{
		Label:  catalog.AllLabel,
		Href:   "/select",
		Count:  c.Len(),
		Active: sel.IsAll(),
	})
	for _, folder := range folders {
		nav = append(nav, NavEntry{
			Label:  catalog.FolderLabel(folder),
			Href:   "/select?folder=" + url.QueryEscape(folder),
			Count:  counts[folder],
			Active: !sel.IsAll() && sel.Key() == folder,
		})
	}

	icons := c.VisibleIcons(sel)
	cards := make([]Card, 0, len(icons))
	for _, icon := range icons {
		cards = append(cards, Card{Name: icon.Name, Src: imageSource(icon.ContentRef)})
	}

	return Page{
		Title:      sel.Label(),
		Count:      len(cards),
		Nav:        nav,
		Cards:      cards,
		Columns:    GridColumns,
		Stylesheet: StylesheetPath,
		Empty:      len(cards) == 0,
		EmptyText:  EmptyMessage,
		Extensions: strings.Join(imagetype.Extensions(), ","),
	}
}

// imageSource maps a content reference to an <img src> value.
func imageSource(ref string) template.URL {
	if datauri.Is(ref) {
		return template.URL(ref)
	}
	return template.URL(blobref.URL(ref))
}

// Render writes the page as a complete HTML document.
func Render(w io.Writer, page Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("rendering viewer page: %w", err)
	}
	return nil
}

// RenderBytes renders the page into memory.
func RenderBytes(page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StaticFS returns the embedded static files rooted so that "viewer.css" resolves.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
