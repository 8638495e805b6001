// Package importer turns a flat list of selected files into a new icon catalog.
package importer

import (
	"time"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/imagetype"
)

// File describes one selected file: its path relative to the picked
// directory and where its bytes come from.
type File struct {
	RelativePath string
	Source       blobref.Source
	SizeBytes    int64
	ModTime      time.Time
}

// RefAllocator allocates a transient reference for a file's bytes.
type RefAllocator interface {
	Create(src blobref.Source, mediaType string) string
}

// Import filters files by supported image extension and groups them by
// folder into a brand-new catalog. One reference is allocated per accepted
// file; the caller owns those references through the returned catalog.
// Unsupported extensions and unusable paths are skipped silently.
func Import(files []File, refs RefAllocator, origin catalog.Origin) *catalog.Catalog {
	builder := catalog.NewBuilder(origin)

	for _, file := range files {
		if file.Source == nil || !imagetype.IsSupported(file.RelativePath) {
			continue
		}
		folder, name := catalog.SplitPath(file.RelativePath)
		if name == "" {
			continue
		}

		relativePath := name
		if folder != "" {
			relativePath = folder + "/" + name
		}

		builder.Add(folder, catalog.IconRecord{
			Name:         name,
			ContentRef:   refs.Create(file.Source, imagetype.MediaType(file.RelativePath)),
			RelativePath: relativePath,
			SizeBytes:    file.SizeBytes,
			ModTime:      file.ModTime,
		})
	}

	return builder.Build()
}
