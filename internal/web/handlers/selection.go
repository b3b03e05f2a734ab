package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-declutter/internal/store"
)

// SelectionHandler mutates the photo selection. Every endpoint responds with
// the resulting session state so clients never need a follow-up fetch.
type SelectionHandler struct {
	store *store.Store
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(st *store.Store) *SelectionHandler {
	return &SelectionHandler{store: st}
}

func (h *SelectionHandler) respondState(w http.ResponseWriter, s *store.AppState) {
	respondJSON(w, http.StatusOK, newStateResponse(s))
}

// Toggle flips the selection of a single photo. Unknown photo ids are a
// no-op, not an error.
func (h *SelectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoID string `json:"photo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhotoID == "" {
		respondError(w, http.StatusBadRequest, "photo_id is required")
		return
	}

	state, _ := h.store.ToggleSelect(req.PhotoID)
	h.respondState(w, state)
}

// SelectGroup selects every member of a group.
func (h *SelectionHandler) SelectGroup(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.SelectAllInGroup(chi.URLParam(r, "groupId"))
	h.respondState(w, state)
}

// DeselectGroup deselects every member of a group.
func (h *SelectionHandler) DeselectGroup(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.DeselectAllInGroup(chi.URLParam(r, "groupId"))
	h.respondState(w, state)
}

// SelectAll selects every photo in the session.
func (h *SelectionHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.SelectAll()
	h.respondState(w, state)
}

// DeselectAll clears the selection.
func (h *SelectionHandler) DeselectAll(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.DeselectAll()
	h.respondState(w, state)
}

// Undo steps the selection back one history entry.
func (h *SelectionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.Undo()
	h.respondState(w, state)
}

// Redo steps the selection forward one history entry.
func (h *SelectionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	state, _ := h.store.Redo()
	h.respondState(w, state)
}
