package export

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/lexandro/iconview-mcp/fileutil"
)

// MediaType is the media type of exported documents.
const MediaType = "text/html; charset=utf-8"

// Artifact is a finished export ready to be saved.
type Artifact struct {
	Filename  string
	Payload   []byte
	MediaType string
}

// Delivery persists an artifact where the user can pick it up.
type Delivery interface {
	Deliver(ctx context.Context, artifact Artifact) error
}

// FileDelivery saves artifacts into a local directory.
type FileDelivery struct {
	Dir string
}

// Path returns where an artifact with the given file name is saved.
func (d FileDelivery) Path(filename string) string {
	return filepath.Join(d.Dir, filepath.Base(filename))
}

// Deliver writes the artifact atomically, replacing any previous export of the same name.
func (d FileDelivery) Deliver(ctx context.Context, artifact Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(d.Path(artifact.Filename), artifact.Payload, ".iconview-*.tmp"); err != nil {
		return fmt.Errorf("saving %s: %w", artifact.Filename, err)
	}
	return nil
}

// ResponseDelivery streams the artifact to a browser as a download.
type ResponseDelivery struct {
	W http.ResponseWriter
}

// Deliver writes download headers and the payload.
func (d ResponseDelivery) Deliver(ctx context.Context, artifact Artifact) error {
	header := d.W.Header()
	header.Set("Content-Type", artifact.MediaType)
	header.Set("Content-Length", strconv.Itoa(len(artifact.Payload)))
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	d.W.WriteHeader(http.StatusOK)
	if _, err := d.W.Write(artifact.Payload); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
