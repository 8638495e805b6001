package tools

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/search"
)

// FormatFolders lists the "all" entry and every folder with its icon count,
// marking the current selection.
func FormatFolders(c *catalog.Catalog, sel catalog.Selection) string {
	if c.IsEmpty() {
		return "No icons imported."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d folders, %d icons:\n\n", c.FolderCount(), c.Len()))
	builder.WriteString(folderLine(catalog.AllLabel, c.Len(), sel.IsAll()))

	counts := c.FolderCounts()
	for _, folder := range c.ListFolders() {
		active := !sel.IsAll() && sel.Key() == folder
		builder.WriteString(folderLine(catalog.FolderLabel(folder), counts[folder], active))
	}
	return builder.String()
}

func folderLine(label string, count int, active bool) string {
	marker := " "
	if active {
		marker = "*"
	}
	return fmt.Sprintf("%s %-40s %d\n", marker, label, count)
}

// FormatIcons formats the icons of a selection.
func FormatIcons(label string, icons []catalog.IconRecord, nameOnly bool) string {
	if len(icons) == 0 {
		return fmt.Sprintf("No icons in %s.", label)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s: %d icons\n\n", label, len(icons)))
	for _, icon := range icons {
		if nameOnly {
			builder.WriteString(icon.RelativePath)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s)\n", icon.RelativePath, formatFileSize(icon.SizeBytes)))
	}
	return builder.String()
}

// FormatSearchHits formats icon name search results grouped by folder.
func FormatSearchHits(hits []search.Hit, total int) string {
	if len(hits) == 0 {
		return "No icons matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d icons", total))
	if total > len(hits) {
		builder.WriteString(fmt.Sprintf(" (showing %d)", len(hits)))
	}
	builder.WriteString(":\n")

	currentFolder := ""
	for i, hit := range hits {
		if i == 0 || hit.Folder != currentFolder {
			currentFolder = hit.Folder
			builder.WriteString(fmt.Sprintf("\n── %s ──\n", catalog.FolderLabel(hit.Folder)))
		}
		builder.WriteString(fmt.Sprintf("  %s\n", hit.Icon.Name))
	}
	return builder.String()
}

// FormatExportResult summarizes a finished export.
func FormatExportResult(result export.Result, path string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("exported: %s\n", path))
	if result.Fallback {
		builder.WriteString("source: cloned viewer page (no icons imported)\n")
	} else {
		builder.WriteString(fmt.Sprintf("icons: %d in %d folders\n", result.Icons, result.Folders))
	}
	if result.Omitted > 0 {
		builder.WriteString(fmt.Sprintf("omitted: %d icons could not be read\n", result.Omitted))
	}
	builder.WriteString(fmt.Sprintf("stylesheets: %d inlined, %d skipped\n", result.StylesInlined, result.StylesSkipped))
	builder.WriteString(fmt.Sprintf("size: %s in %s\n", formatFileSize(int64(result.Bytes)), result.Duration.Round(time.Millisecond)))
	return builder.String()
}

// folderBreakdown returns folder keys ordered by icon count, largest first.
func folderBreakdown(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
