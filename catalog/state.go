package catalog

import "sync"

// Releaser revokes transient content references.
type Releaser interface {
	Release(ref string)
}

// State owns the current catalog and selection.
// Thread-safe: the web viewer and the MCP server read and replace it concurrently.
type State struct {
	mu        sync.RWMutex
	catalog   *Catalog
	selection Selection
	refs      Releaser
}

// NewState creates a state holding an empty catalog with the "all" selection.
func NewState(refs Releaser) *State {
	return &State{catalog: Empty(), refs: refs}
}

// Replace installs a new catalog, resets the selection to "all" and
// releases every reference held by the replaced catalog.
func (s *State) Replace(next *Catalog) {
	if next == nil {
		next = Empty()
	}

	s.mu.Lock()
	previous := s.catalog
	s.catalog = next
	s.selection = All()
	s.mu.Unlock()

	if previous != nil && previous != next {
		s.release(previous)
	}
}

// Select changes the current selection.
func (s *State) Select(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

// Snapshot returns the current catalog and selection consistently.
func (s *State) Snapshot() (*Catalog, Selection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.selection
}

// Catalog returns the current catalog.
func (s *State) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Selection returns the current selection.
func (s *State) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Close releases the references of the current catalog and leaves an empty one.
func (s *State) Close() {
	s.Replace(Empty())
}

func (s *State) release(c *Catalog) {
	if s.refs == nil {
		return
	}
	for _, ref := range c.Refs() {
		s.refs.Release(ref)
	}
}
