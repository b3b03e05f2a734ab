package store

import (
	"time"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
)

// withSelection builds the successor state for a selection change: flags are
// recomputed everywhere, any redo tail beyond the current history pointer is
// discarded, and a new history entry is appended.
func (s *AppState) withSelection(selected map[string]struct{}, now time.Time) *AppState {
	history := make([]Snapshot, 0, s.HistoryIndex+2)
	if s.HistoryIndex >= 0 {
		history = append(history, s.History[:s.HistoryIndex+1]...)
	}
	history = append(history, Snapshot{Selected: copySet(selected), Timestamp: now})

	return &AppState{
		Photos:       withSelectedFlags(s.Photos, selected),
		Groups:       withGroupFlags(s.Groups, selected),
		UniquePhotos: withSelectedFlags(s.UniquePhotos, selected),
		Selected:     selected,
		History:      history,
		HistoryIndex: len(history) - 1,
	}
}

// Ingest appends newly analyzed photos and records the grouping result that
// was computed over the entire updated photo set. Auto-selection picks every
// unique photo plus the keeper of every group. The very first ingest resets
// history to a single entry; later ingests append like any other
// selection-changing action.
func Ingest(s *AppState, newPhotos []catalog.Photo, result catalog.GroupResult, now time.Time) *AppState {
	photos := make([]catalog.Photo, 0, len(s.Photos)+len(newPhotos))
	photos = append(photos, s.Photos...)
	photos = append(photos, newPhotos...)

	selected := make(map[string]struct{})
	for _, p := range result.UniquePhotos {
		selected[p.ID] = struct{}{}
	}
	for i := range result.Groups {
		if keeper := result.Groups[i].Keeper(); keeper != nil {
			selected[keeper.ID] = struct{}{}
		}
	}

	next := &AppState{
		Photos:       withSelectedFlags(photos, selected),
		Groups:       withGroupFlags(result.Groups, selected),
		UniquePhotos: withSelectedFlags(result.UniquePhotos, selected),
		Selected:     selected,
	}

	entry := Snapshot{Selected: copySet(selected), Timestamp: now}
	if len(s.Photos) == 0 {
		next.History = []Snapshot{entry}
	} else {
		next.History = make([]Snapshot, 0, s.HistoryIndex+2)
		if s.HistoryIndex >= 0 {
			next.History = append(next.History, s.History[:s.HistoryIndex+1]...)
		}
		next.History = append(next.History, entry)
	}
	next.HistoryIndex = len(next.History) - 1

	return next
}

// ToggleSelect flips the selection of one photo. Unknown ids are a silent
// no-op returning the identical state.
func ToggleSelect(s *AppState, photoID string, now time.Time) *AppState {
	if !s.hasPhoto(photoID) {
		return s
	}

	selected := copySet(s.Selected)
	if _, ok := selected[photoID]; ok {
		delete(selected, photoID)
	} else {
		selected[photoID] = struct{}{}
	}

	return s.withSelection(selected, now)
}

// SelectAllInGroup selects every photo in the named group. No-op when the
// group does not exist or all its members are already selected.
func SelectAllInGroup(s *AppState, groupID string, now time.Time) *AppState {
	group := s.FindGroup(groupID)
	if group == nil {
		return s
	}

	selected := copySet(s.Selected)
	changed := false
	for i := range group.Photos {
		if _, ok := selected[group.Photos[i].ID]; !ok {
			selected[group.Photos[i].ID] = struct{}{}
			changed = true
		}
	}
	if !changed {
		return s
	}

	return s.withSelection(selected, now)
}

// DeselectAllInGroup deselects every photo in the named group. No-op when
// the group does not exist or none of its members are selected.
func DeselectAllInGroup(s *AppState, groupID string, now time.Time) *AppState {
	group := s.FindGroup(groupID)
	if group == nil {
		return s
	}

	selected := copySet(s.Selected)
	changed := false
	for i := range group.Photos {
		if _, ok := selected[group.Photos[i].ID]; ok {
			delete(selected, group.Photos[i].ID)
			changed = true
		}
	}
	if !changed {
		return s
	}

	return s.withSelection(selected, now)
}

// SelectAll selects every photo. No-op when everything is already selected.
func SelectAll(s *AppState, now time.Time) *AppState {
	selected := make(map[string]struct{}, len(s.Photos))
	for i := range s.Photos {
		selected[s.Photos[i].ID] = struct{}{}
	}
	if len(selected) == len(s.Selected) {
		return s
	}

	return s.withSelection(selected, now)
}

// DeselectAll clears the selection. No-op when nothing is selected.
func DeselectAll(s *AppState, now time.Time) *AppState {
	if len(s.Selected) == 0 {
		return s
	}

	return s.withSelection(make(map[string]struct{}), now)
}

// restoreHistory builds the state at the given history index without
// touching the history log itself.
func (s *AppState) restoreHistory(index int) *AppState {
	selected := copySet(s.History[index].Selected)
	return &AppState{
		Photos:       withSelectedFlags(s.Photos, selected),
		Groups:       withGroupFlags(s.Groups, selected),
		UniquePhotos: withSelectedFlags(s.UniquePhotos, selected),
		Selected:     selected,
		History:      s.History,
		HistoryIndex: index,
	}
}

// Undo restores the previous history entry. No-op at the first entry.
func Undo(s *AppState) *AppState {
	if !s.CanUndo() {
		return s
	}
	return s.restoreHistory(s.HistoryIndex - 1)
}

// Redo restores the next history entry. No-op at the last entry.
func Redo(s *AppState) *AppState {
	if !s.CanRedo() {
		return s
	}
	return s.restoreHistory(s.HistoryIndex + 1)
}
