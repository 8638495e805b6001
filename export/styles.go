package export

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

// StyleResult is the outcome of inlining a page's stylesheets.
type StyleResult struct {
	CSS     string // concatenated sheets, each prefixed with a provenance comment
	Inlined int
	Skipped int // cross-origin or failed sheets
}

// InlineStyles fetches every same-origin stylesheet linked from the page and
// concatenates them in document order. Cross-origin sheets and failed
// fetches are skipped; a partial result is still returned.
func (e *Exporter) InlineStyles(ctx context.Context, page Page) StyleResult {
	ctx, span := tracer.Start(ctx, "export.inline_styles")
	defer span.End()

	var result StyleResult
	hrefs := stylesheetHrefs(page.HTML)
	if len(hrefs) == 0 || e.Fetcher == nil {
		result.Skipped = len(hrefs)
		return result
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		e.logger().Debug("export: unparsable page URL, skipping styles", "url", page.URL, "error", err)
		result.Skipped = len(hrefs)
		return result
	}

	// Each task writes only its own slot
	sheets := make([]string, len(hrefs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency())
	for i, href := range hrefs {
		ref, err := url.Parse(href)
		if err != nil {
			e.logger().Debug("export: skipped stylesheet", "href", href, "error", err)
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != base.Scheme || abs.Host != base.Host {
			e.logger().Debug("export: skipped cross-origin stylesheet", "href", abs.String())
			continue
		}
		group.Go(func() error {
			css, err := e.Fetcher.Fetch(groupCtx, abs.String())
			if err != nil {
				e.logger().Debug("export: stylesheet fetch failed", "href", abs.String(), "error", err)
				return nil
			}
			sheets[i] = "/* inlined: " + abs.Path + " */\n" + string(css)
			return nil
		})
	}
	group.Wait()

	var parts []string
	for _, sheet := range sheets {
		if sheet == "" {
			result.Skipped++
			continue
		}
		parts = append(parts, sheet)
		result.Inlined++
	}
	result.CSS = strings.Join(parts, "\n\n")

	e.logger().Debug("export: inlined styles", "inlined", result.Inlined, "skipped", result.Skipped)
	return result
}

// stylesheetHrefs returns the href of every <link rel="stylesheet"> in document order.
func stylesheetHrefs(document []byte) []string {
	if len(document) == 0 {
		return nil
	}
	root, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil
	}
	var hrefs []string
	for _, n := range collect(root, isStylesheetLink) {
		if href := attr(n, "href"); href != "" {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}

// collect returns the nodes under root matching keep, in document order.
func collect(root *html.Node, keep func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if keep(n) {
			nodes = append(nodes, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(root)
	return nodes
}

func isStylesheetLink(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Link {
		return false
	}
	for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key string, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
