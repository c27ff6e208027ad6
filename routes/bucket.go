package routes

import (
	"encoding/base64"
	"errors"
	"net/http"

	"starter-api/storage/blob"
)

type objectBody struct {
	Content *string `json:"content" validate:"required"`
}

type objectContent struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
}

func (h *handlers) listObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.bucket.List(r.Context())
	if err != nil {
		h.storeFailed(w, "Failed to list objects", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]blob.ObjectInfo{"objects": objects})
}

func (h *handlers) getObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	obj, err := h.bucket.Get(r.Context(), key)
	switch {
	case errors.Is(err, blob.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Object not found"})
	case errors.Is(err, blob.ErrInvalidKey):
		badRequest(w, err)
	case err != nil:
		h.storeFailed(w, "Failed to get object", err)
	default:
		writeJSON(w, http.StatusOK, objectContent{
			Content:  base64.StdEncoding.EncodeToString(obj.Data),
			Encoding: "base64",
			Key:      key,
			Size:     obj.Size,
		})
	}
}

func (h *handlers) putObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body objectBody
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	info, err := h.bucket.Put(r.Context(), key, []byte(*body.Content))
	switch {
	case errors.Is(err, blob.ErrInvalidKey):
		badRequest(w, err)
	case err != nil:
		h.storeFailed(w, "Failed to upload object", err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"key": info.Key, "size": info.Size})
	}
}

func (h *handlers) deleteObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	err := h.bucket.Delete(r.Context(), key)
	switch {
	case errors.Is(err, blob.ErrInvalidKey):
		badRequest(w, err)
	case err != nil:
		h.storeFailed(w, "Failed to delete object", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"deleted": key})
	}
}
