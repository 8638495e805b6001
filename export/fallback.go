package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/datauri"
)

// UploadControlID is the id of the viewer's directory upload input.
const UploadControlID = "folder-upload"

// cloneDocument is the fallback used when there is no structured catalog
// data: it takes the rendered viewer page as-is, swaps transient image
// references for data URIs, inlines styles and strips the upload and
// download controls. Every step is best-effort.
func (e *Exporter) cloneDocument(ctx context.Context, page Page, styles StyleResult) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "export.clone_document")
	defer span.End()

	root, err := html.Parse(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	e.inlineImages(ctx, root)

	if styles.CSS != "" {
		if head := first(root, atom.Head); head != nil {
			style := &html.Node{
				Type:     html.ElementNode,
				Data:     "style",
				DataAtom: atom.Style,
				Attr:     []html.Attribute{{Key: "data-inlined-styles", Val: "true"}},
			}
			style.AppendChild(&html.Node{Type: html.TextNode, Data: escapeStyleText(styles.CSS)})
			head.AppendChild(style)
		}
		removeAll(collect(root, isStylesheetLink))
	}

	stripControls(root)

	var buf bytes.Buffer
	if root.FirstChild == nil || root.FirstChild.Type != html.DoctypeNode {
		buf.WriteString("<!doctype html>")
	}
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("rendering cloned page: %w", err)
	}
	return buf.Bytes(), nil
}

// inlineImages replaces transient image sources with data URIs in parallel.
// Images that fail to resolve keep their original source.
func (e *Exporter) inlineImages(ctx context.Context, root *html.Node) {
	images := collect(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Img
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency())
	for _, img := range images {
		src := attr(img, "src")
		ref, ok := transientRef(src)
		if !ok {
			continue
		}
		name := attr(img, "alt")
		group.Go(func() error {
			data, err := e.Refs.Resolve(groupCtx, ref)
			if err != nil {
				e.logger().Debug("export: kept unresolved image", "src", src, "error", err)
				return nil
			}
			// Each task owns its own node
			setAttr(img, "src", datauri.EncodeIcon(name, data))
			return nil
		})
	}
	group.Wait()
}

// transientRef maps an image source to a registry reference.
// Accepts "blob:<id>" and viewer URLs whose path is "/blob/<id>".
func transientRef(src string) (string, bool) {
	if strings.HasPrefix(src, blobref.Prefix) {
		if _, ok := blobref.ID(src); ok {
			return src, true
		}
		return "", false
	}
	u, err := url.Parse(src)
	if err != nil || !strings.HasPrefix(u.Path, blobref.URLPrefix) {
		return "", false
	}
	id, ok := blobref.ID(u.Path)
	if !ok {
		return "", false
	}
	return blobref.Prefix + id, true
}

// stripControls removes the upload input, its label, the upload script and
// buttons labelled Upload or Download, then drops forms left without content.
func stripControls(root *html.Node) {
	removeAll(collect(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		switch {
		case attr(n, "id") == UploadControlID:
			return true
		case n.DataAtom == atom.Label && attr(n, "for") == UploadControlID:
			return true
		case n.DataAtom == atom.Script && attr(n, "data-control") == "upload":
			return true
		case n.DataAtom == atom.Button:
			label := strings.ToLower(strings.TrimSpace(textContent(n)))
			return label == "download" || label == "upload"
		}
		return false
	}))

	removeAll(collect(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Form && !hasElementChild(n)
	}))
}

func first(root *html.Node, a atom.Atom) *html.Node {
	nodes := collect(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func removeAll(nodes []*html.Node) {
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func textContent(n *html.Node) string {
	var builder strings.Builder
	for _, text := range collect(n, func(c *html.Node) bool { return c.Type == html.TextNode }) {
		builder.WriteString(text.Data)
	}
	return builder.String()
}

func hasElementChild(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return true
		}
	}
	return false
}
