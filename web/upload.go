package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/imagetype"
	"github.com/lexandro/iconview-mcp/importer"
)

// uploadMemoryBytes is how much of a multipart body is kept in memory
// before parts spill to temporary files.
const uploadMemoryBytes = 32 << 20

// readUpload turns a folder upload into import descriptors. Each "files"
// part is paired by position with a "paths" value carrying the path relative
// to the picked directory; without one the part's file name is used.
// Unsupported files are skipped before their bytes are read. Only a body
// that is not a multipart form is an error.
func readUpload(r *http.Request) ([]importer.File, error) {
	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	// A pick without icons yields no parts and installs an empty catalog
	headers := r.MultipartForm.File["files"]
	paths := r.MultipartForm.Value["paths"]

	files := make([]importer.File, 0, len(headers))
	for i, header := range headers {
		relPath := header.Filename
		if i < len(paths) && paths[i] != "" {
			relPath = paths[i]
		}
		if !imagetype.IsSupported(relPath) {
			continue
		}
		data, err := readPart(header)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", relPath, err)
		}
		files = append(files, importer.File{
			RelativePath: relPath,
			Source:       blobref.BytesSource(data),
			SizeBytes:    int64(len(data)),
		})
	}
	return files, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
