package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"starter-api/storage/notes"
)

type noteBody struct {
	Content string `json:"content" validate:"min=1"`
}

func (h *handlers) initDB(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Init(r.Context()); err != nil {
		h.storeFailed(w, "Failed to initialize database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Table created"})
}

func (h *handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context())
	if err != nil {
		h.storeFailed(w, "Failed to list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]notes.Note{"notes": list})
}

func (h *handlers) createNote(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	n, err := h.notes.Create(r.Context(), body.Content)
	if err != nil {
		h.storeFailed(w, "Failed to create note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": n.Content, "id": n.ID})
}

func (h *handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID", "ID must be a valid integer")
		return
	}

	err = h.notes.Delete(r.Context(), id)
	switch {
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("Note with ID %d not found", id))
	case err != nil:
		h.storeFailed(w, "Failed to delete note", err)
	default:
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
