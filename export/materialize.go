package export

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/datauri"
)

// ExportedIcon is an icon as embedded in the exported document.
type ExportedIcon struct {
	Name string `json:"name"`
	Path string `json:"path"` // data URI
}

// FolderData holds one folder's embedded icons.
type FolderData struct {
	Key   string
	Icons []ExportedIcon
}

// Materialize resolves and encodes every icon of every folder, in parallel.
// Folders come back in sorted key order and icons keep their import order.
// Icons whose bytes cannot be resolved are omitted and counted.
func (e *Exporter) Materialize(ctx context.Context, c *catalog.Catalog) ([]FolderData, int) {
	ctx, span := tracer.Start(ctx, "export.materialize")
	defer span.End()

	folders := c.ListFolders()
	slots := make([][]ExportedIcon, len(folders))
	resolved := make([][]bool, len(folders))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency())
	for i, folder := range folders {
		icons := c.Icons(folder)
		slots[i] = make([]ExportedIcon, len(icons))
		resolved[i] = make([]bool, len(icons))
		for j, icon := range icons {
			group.Go(func() error {
				encoded, err := e.encodeIcon(groupCtx, icon)
				if err != nil {
					e.logger().Debug("export: omitted icon", "path", icon.RelativePath, "error", err)
					return nil
				}
				slots[i][j] = ExportedIcon{Name: icon.Name, Path: encoded}
				resolved[i][j] = true
				return nil
			})
		}
	}
	group.Wait()

	omitted := 0
	out := make([]FolderData, 0, len(folders))
	for i, folder := range folders {
		data := FolderData{Key: folder, Icons: make([]ExportedIcon, 0, len(slots[i]))}
		for j, icon := range slots[i] {
			if !resolved[i][j] {
				omitted++
				continue
			}
			data.Icons = append(data.Icons, icon)
		}
		out = append(out, data)
	}
	return out, omitted
}

// encodeIcon turns an icon's content reference into a data URI.
// References that are already data URIs pass through unchanged.
func (e *Exporter) encodeIcon(ctx context.Context, icon catalog.IconRecord) (string, error) {
	if datauri.Is(icon.ContentRef) {
		return icon.ContentRef, nil
	}
	data, err := e.Refs.Resolve(ctx, icon.ContentRef)
	if err != nil {
		return "", err
	}
	return datauri.EncodeIcon(icon.Name, data), nil
}
