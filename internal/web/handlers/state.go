package handlers

import (
	"net/http"
	"sort"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

// StateHandler serves the current session state.
type StateHandler struct {
	store *store.Store
}

// NewStateHandler creates a new state handler.
func NewStateHandler(st *store.Store) *StateHandler {
	return &StateHandler{store: st}
}

// stateResponse is the JSON view of the session state.
type stateResponse struct {
	Photos       []catalog.Photo      `json:"photos"`
	Groups       []catalog.PhotoGroup `json:"groups"`
	UniquePhotos []catalog.Photo      `json:"unique_photos"`
	SelectedIDs  []string             `json:"selected_ids"`
	CanUndo      bool                 `json:"can_undo"`
	CanRedo      bool                 `json:"can_redo"`
}

// newStateResponse builds the response view from a state snapshot.
func newStateResponse(s *store.AppState) stateResponse {
	selected := make([]string, 0, len(s.Selected))
	for id := range s.Selected {
		selected = append(selected, id)
	}
	sort.Strings(selected)

	resp := stateResponse{
		Photos:       s.Photos,
		Groups:       s.Groups,
		UniquePhotos: s.UniquePhotos,
		SelectedIDs:  selected,
		CanUndo:      s.CanUndo(),
		CanRedo:      s.CanRedo(),
	}
	// Keep the JSON arrays non-null for empty sessions.
	if resp.Photos == nil {
		resp.Photos = []catalog.Photo{}
	}
	if resp.Groups == nil {
		resp.Groups = []catalog.PhotoGroup{}
	}
	if resp.UniquePhotos == nil {
		resp.UniquePhotos = []catalog.Photo{}
	}
	return resp
}

// Get returns the full session state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newStateResponse(h.store.State()))
}
