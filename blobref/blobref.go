// Package blobref hands out revocable, session-scoped references to icon bytes.
//
// A reference is the string "blob:<uuid>". It stays resolvable until it is
// released; the bytes behind it are read lazily from its Source on every
// resolve, so holding a reference never copies a file into memory.
package blobref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefix marks a string as a transient reference.
const Prefix = "blob:"

// URLPrefix is the path under which the web viewer serves references.
const URLPrefix = "/blob/"

// ErrNotFound is returned when a reference was never created or has been released.
var ErrNotFound = errors.New("blob reference not found")

// Source supplies the bytes behind a reference.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads bytes from a file on disk at resolve time.
type FileSource struct {
	Path string
}

// Open opens the backing file.
func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// BytesSource serves bytes already held in memory (browser uploads).
type BytesSource []byte

// Open returns a reader over the held bytes.
func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}

// Registry tracks live references. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry // key: uuid
}

type entry struct {
	source    Source
	mediaType string
}

// NewRegistry creates an empty reference registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Create registers a source with its media type and returns a new reference
// to it. The media type may be empty when it is not known.
func (r *Registry) Create(src Source, mediaType string) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry{source: src, mediaType: mediaType}
	return Prefix + id
}

// MediaType returns the media type recorded for ref.
// It reports false for unknown or released references.
func (r *Registry) MediaType(ref string) (string, bool) {
	id, ok := ID(ref)
	if !ok {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e.mediaType, ok
}

// Open returns a reader for the bytes behind ref.
func (r *Registry) Open(ref string) (io.ReadCloser, error) {
	id, ok := ID(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	rc, err := e.source.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", ref, err)
	}
	return rc, nil
}

// Resolve reads all bytes behind ref.
func (r *Registry) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := r.Open(ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

// Release revokes ref. Releasing an unknown or already released reference is a no-op.
func (r *Registry) Release(ref string) {
	id, ok := ID(ref)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of live references.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ID extracts the identifier from a reference or a viewer URL.
// Accepts "blob:<id>", "/blob/<id>" and a bare "<id>".
func ID(ref string) (string, bool) {
	switch {
	case strings.HasPrefix(ref, Prefix):
		ref = strings.TrimPrefix(ref, Prefix)
	case strings.HasPrefix(ref, URLPrefix):
		ref = strings.TrimPrefix(ref, URLPrefix)
	}
	if ref == "" || strings.ContainsAny(ref, "/:") {
		return "", false
	}
	return ref, true
}

// URL returns the viewer path serving ref.
func URL(ref string) string {
	id, ok := ID(ref)
	if !ok {
		return ""
	}
	return URLPrefix + id
}
