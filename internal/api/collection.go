package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/craftfolder/internal/collection"
)

// ListCollection handles GET /api/collection?type=All|Yarn|Thread.
func (h *Handler) ListCollection(w http.ResponseWriter, r *http.Request) {
	items, err := h.collection.List(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err, "list collection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// GetCollectionItem handles GET /api/collection/{id}.
func (h *Handler) GetCollectionItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.collection.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "get collection item failed")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// AddCollectionItem handles POST /api/collection.
func (h *Handler) AddCollectionItem(w http.ResponseWriter, r *http.Request) {
	var in collection.ItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	it, err := h.collection.Add(r.Context(), in)
	if err != nil {
		writeError(w, err, "add collection item failed")
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateCollectionItem handles PUT /api/collection/{id}.
func (h *Handler) UpdateCollectionItem(w http.ResponseWriter, r *http.Request) {
	var in collection.ItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	it, err := h.collection.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err, "update collection item failed", slog.String("item_id", id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// RemoveCollectionItem handles DELETE /api/collection/{id}.
func (h *Handler) RemoveCollectionItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.collection.Remove(r.Context(), id); err != nil {
		writeError(w, err, "remove collection item failed", slog.String("item_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
