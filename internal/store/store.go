package store

import (
	"sync"
	"time"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
)

// Store serializes transitions over one AppState value. Transitions
// themselves are pure; the Store only guarantees they apply one at a time
// and that readers always see a complete state.
type Store struct {
	mu    sync.RWMutex
	state *AppState
	now   func() time.Time
}

// New creates a store with empty session state.
func New() *Store {
	return &Store{
		state: NewAppState(),
		now:   time.Now,
	}
}

// State returns the current state snapshot. The returned value must be
// treated as immutable.
func (st *Store) State() *AppState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// apply runs one transition under the lock and reports whether it changed
// state.
func (st *Store) apply(fn func(*AppState) *AppState) (*AppState, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	next := fn(st.state)
	changed := next != st.state
	st.state = next
	return next, changed
}

// Ingest records newly analyzed photos together with the grouping result
// computed over the full updated photo set.
func (st *Store) Ingest(newPhotos []catalog.Photo, result catalog.GroupResult) *AppState {
	state, _ := st.apply(func(s *AppState) *AppState {
		return Ingest(s, newPhotos, result, st.now())
	})
	return state
}

// ToggleSelect flips one photo's selection.
func (st *Store) ToggleSelect(photoID string) (*AppState, bool) {
	return st.apply(func(s *AppState) *AppState {
		return ToggleSelect(s, photoID, st.now())
	})
}

// SelectAllInGroup selects every member of a group.
func (st *Store) SelectAllInGroup(groupID string) (*AppState, bool) {
	return st.apply(func(s *AppState) *AppState {
		return SelectAllInGroup(s, groupID, st.now())
	})
}

// DeselectAllInGroup deselects every member of a group.
func (st *Store) DeselectAllInGroup(groupID string) (*AppState, bool) {
	return st.apply(func(s *AppState) *AppState {
		return DeselectAllInGroup(s, groupID, st.now())
	})
}

// SelectAll selects every photo.
func (st *Store) SelectAll() (*AppState, bool) {
	return st.apply(func(s *AppState) *AppState {
		return SelectAll(s, st.now())
	})
}

// DeselectAll clears the selection.
func (st *Store) DeselectAll() (*AppState, bool) {
	return st.apply(func(s *AppState) *AppState {
		return DeselectAll(s, st.now())
	})
}

// Undo steps the history pointer back.
func (st *Store) Undo() (*AppState, bool) {
	return st.apply(Undo)
}

// Redo steps the history pointer forward.
func (st *Store) Redo() (*AppState, bool) {
	return st.apply(Redo)
}
