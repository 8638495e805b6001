package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// IconRecord is one imported icon.
type IconRecord struct {
	Name         string    // Base name including extension
	ContentRef   string    // Transient reference ("blob:<id>") or, in exports, a data URI
	RelativePath string    // Full path relative to the imported root (forward slashes)
	SizeBytes    int64     // File size in bytes
	ModTime      time.Time // Last modification time, zero for uploads
}

// Origin records where a catalog was imported from.
type Origin string

const (
	OriginNone      Origin = ""
	OriginDirectory Origin = "directory"
	OriginUpload    Origin = "upload"
)

// Catalog maps folder keys to ordered icon lists.
// A Catalog is immutable once built; replace it instead of mutating it.
type Catalog struct {
	folders    map[string][]IconRecord // key: folder key ("" for root-level icons)
	sortedKeys []string                // sorted for deterministic iteration
	origin     Origin
	iconCount  int
}

// Empty returns a catalog with no folders.
func Empty() *Catalog {
	return &Catalog{folders: make(map[string][]IconRecord), sortedKeys: []string{}}
}

// Builder accumulates icons for a new Catalog.
type Builder struct {
	folders map[string][]IconRecord
	origin  Origin
}

// NewBuilder creates a builder for a catalog of the given origin.
func NewBuilder(origin Origin) *Builder {
	return &Builder{folders: make(map[string][]IconRecord), origin: origin}
}

// Add appends an icon to the folder's list, creating the folder if absent.
// Icons with an empty name are dropped.
func (b *Builder) Add(folder string, icon IconRecord) {
	if icon.Name == "" {
		return
	}
	b.folders[folder] = append(b.folders[folder], icon)
}

// Build returns the catalog. The builder must not be used afterwards.
func (b *Builder) Build() *Catalog {
	c := &Catalog{
		folders:    b.folders,
		sortedKeys: make([]string, 0, len(b.folders)),
		origin:     b.origin,
	}
	for key, icons := range b.folders {
		c.sortedKeys = append(c.sortedKeys, key)
		c.iconCount += len(icons)
	}
	sort.Strings(c.sortedKeys)
	b.folders = nil
	return c
}

// Origin returns where the catalog was imported from.
func (c *Catalog) Origin() Origin {
	return c.origin
}

// ListFolders returns all folder keys in lexicographic order.
func (c *Catalog) ListFolders() []string {
	keys := make([]string, len(c.sortedKeys))
	copy(keys, c.sortedKeys)
	return keys
}

// Has reports whether the folder key exists.
func (c *Catalog) Has(folder string) bool {
	_, ok := c.folders[folder]
	return ok
}

// Icons returns a copy of the folder's icon list in import order.
// An absent folder yields an empty list.
func (c *Catalog) Icons(folder string) []IconRecord {
	icons := c.folders[folder]
	out := make([]IconRecord, len(icons))
	copy(out, icons)
	return out
}

// VisibleIcons returns the icons shown for a selection: every folder
// concatenated in lexicographic key order for "all", otherwise the
// selected folder's list (empty when the folder is absent).
func (c *Catalog) VisibleIcons(sel Selection) []IconRecord {
	if !sel.IsAll() {
		return c.Icons(sel.Key())
	}
	out := make([]IconRecord, 0, c.iconCount)
	for _, key := range c.sortedKeys {
		out = append(out, c.folders[key]...)
	}
	return out
}

// Len returns the total number of icons across all folders.
func (c *Catalog) Len() int {
	return c.iconCount
}

// FolderCount returns the number of folders.
func (c *Catalog) FolderCount() int {
	return len(c.sortedKeys)
}

// IsEmpty reports whether the catalog holds no icons.
func (c *Catalog) IsEmpty() bool {
	return c.iconCount == 0
}

// FolderCounts returns a map of folder key -> icon count.
func (c *Catalog) FolderCounts() map[string]int {
	counts := make(map[string]int, len(c.folders))
	for key, icons := range c.folders {
		counts[key] = len(icons)
	}
	return counts
}

// TotalSizeBytes returns the total size of all icons.
func (c *Catalog) TotalSizeBytes() int64 {
	var totalSize int64
	for _, icons := range c.folders {
		for _, icon := range icons {
			totalSize += icon.SizeBytes
		}
	}
	return totalSize
}

// Refs returns every content reference held by the catalog.
func (c *Catalog) Refs() []string {
	refs := make([]string, 0, c.iconCount)
	for _, key := range c.sortedKeys {
		for _, icon := range c.folders[key] {
			refs = append(refs, icon.ContentRef)
		}
	}
	return refs
}

// Match returns the visible icons whose relative path matches a doublestar glob pattern.
func (c *Catalog) Match(pattern string, sel Selection, maxResults int) ([]IconRecord, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	// Normalize pattern to forward slashes
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []IconRecord
	for _, icon := range c.VisibleIcons(sel) {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, icon.RelativePath)
		if err != nil || !matched {
			continue
		}
		results = append(results, icon)
	}
	return results, nil
}

// Find returns the icon at a relative path.
func (c *Catalog) Find(relativePath string) (IconRecord, bool) {
	folder, name := SplitPath(relativePath)
	for _, icon := range c.folders[folder] {
		if icon.Name == name {
			return icon, true
		}
	}
	return IconRecord{}, false
}

// SplitPath splits a relative path into its folder key and base name.
// Backslashes are treated as separators and empty segments are dropped.
func SplitPath(relativePath string) (folder string, name string) {
	parts := strings.Split(strings.ReplaceAll(relativePath, "\\", "/"), "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return "", ""
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1]
}
