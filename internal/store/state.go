// Package store holds the canonical declutter session state and its
// transitions. Every operation is a pure function from state to state:
// inputs are never mutated, and operations that change nothing return the
// identical *AppState so callers can detect "nothing happened" by pointer
// comparison.
package store

import (
	"time"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
)

// Snapshot is one entry in the selection history.
type Snapshot struct {
	Selected  map[string]struct{} `json:"-"`
	Timestamp time.Time           `json:"timestamp"`
}

// AppState is the full session snapshot.
type AppState struct {
	// Photos holds every photo ever ingested, in insertion order.
	Photos []catalog.Photo
	// Groups and UniquePhotos are the latest grouping result; together
	// they partition Photos.
	Groups       []catalog.PhotoGroup
	UniquePhotos []catalog.Photo
	// Selected is the set of currently selected photo ids.
	Selected map[string]struct{}
	// History is the linear undo log; HistoryIndex points at the entry
	// matching Selected. Invariant: -1 <= HistoryIndex < len(History).
	History      []Snapshot
	HistoryIndex int
}

// NewAppState returns the empty session state.
func NewAppState() *AppState {
	return &AppState{
		Selected:     make(map[string]struct{}),
		HistoryIndex: -1,
	}
}

// IsSelected reports whether the photo id is currently selected.
func (s *AppState) IsSelected(id string) bool {
	_, ok := s.Selected[id]
	return ok
}

// CanUndo reports whether an Undo transition would change state.
func (s *AppState) CanUndo() bool {
	return s.HistoryIndex > 0
}

// CanRedo reports whether a Redo transition would change state.
func (s *AppState) CanRedo() bool {
	return s.HistoryIndex >= 0 && s.HistoryIndex < len(s.History)-1
}

// FindGroup returns the group with the given id, or nil.
func (s *AppState) FindGroup(groupID string) *catalog.PhotoGroup {
	for i := range s.Groups {
		if s.Groups[i].ID == groupID {
			return &s.Groups[i]
		}
	}
	return nil
}

// hasPhoto reports whether a photo with the given id exists.
func (s *AppState) hasPhoto(id string) bool {
	for i := range s.Photos {
		if s.Photos[i].ID == id {
			return true
		}
	}
	return false
}

// copySet returns a fresh copy of a selection set.
func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// withSelectedFlags returns a copy of photos with Selected recomputed from
// the selection set.
func withSelectedFlags(photos []catalog.Photo, selected map[string]struct{}) []catalog.Photo {
	out := make([]catalog.Photo, len(photos))
	for i, p := range photos {
		_, p.Selected = selected[p.ID]
		out[i] = p
	}
	return out
}

// withGroupFlags returns a copy of groups with member Selected flags
// recomputed from the selection set.
func withGroupFlags(groups []catalog.PhotoGroup, selected map[string]struct{}) []catalog.PhotoGroup {
	out := make([]catalog.PhotoGroup, len(groups))
	for i, g := range groups {
		g.Photos = withSelectedFlags(g.Photos, selected)
		out[i] = g
	}
	return out
}
