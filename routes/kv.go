package routes

import (
	"errors"
	"net/http"

	"starter-api/storage/kv"
)

type kvValueBody struct {
	Value *string `json:"value" validate:"required"`
}

type kvEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *handlers) getKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	res := kv.Read(r.Context(), h.kv, key)
	if res.Failed() {
		h.storeFailed(w, "Failed to retrieve key", res.Err)
		return
	}
	// valor vazio conta como ausente
	if !res.Hit() || res.Value == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Key not found"})
		return
	}
	writeJSON(w, http.StatusOK, kvEntry{Key: key, Value: res.Value})
}

func (h *handlers) putKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body kvValueBody
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.kv.Put(r.Context(), key, *body.Value, 0); err != nil {
		h.storeFailed(w, "Failed to store key", err)
		return
	}
	writeJSON(w, http.StatusOK, kvEntry{Key: key, Value: *body.Value})
}

func (h *handlers) deleteKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := h.kv.Delete(r.Context(), key); err != nil && !errors.Is(err, kv.ErrNotFound) {
		h.storeFailed(w, "Failed to delete key", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": key})
}
