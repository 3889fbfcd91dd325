package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/projects"
)

// projectView is a project with its resolved thumbnail.
type projectView struct {
	models.Project
	Thumbnail *models.ProjectPhoto `json:"thumbnail,omitempty"`
}

func viewOf(p models.Project) projectView {
	return projectView{Project: p, Thumbnail: p.Thumbnail()}
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, _ *http.Request) {
	list := h.projects.List()
	out := make([]projectView, len(list))
	for i, p := range list {
		out[i] = viewOf(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": out,
		"total":    len(out),
	})
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.projects.Get(id)
	if err != nil {
		writeError(w, err, "get project failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in projects.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = ""
	p, err := h.projects.Save(r.Context(), in)
	if err != nil {
		writeError(w, err, "create project failed")
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(p))
}

// UpdateProject handles PUT /api/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in projects.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = chi.URLParam(r, "id")
	p, err := h.projects.Save(r.Context(), in)
	if err != nil {
		writeError(w, err, "update project failed", slog.String("project_id", in.ID))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeError(w, err, "delete project failed", slog.String("project_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Timeline handles GET /api/projects/{id}/timeline.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.projects.Timeline(id)
	if err != nil {
		writeError(w, err, "timeline failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeline": entries})
}

// AddPhoto handles POST /api/projects/{id}/photos with a JSON body naming
// an already reachable URI.
func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var in projects.PhotoInput
	if !decodeJSON(w, r, &in) {
		return
	}
	h.addPhoto(w, r, in)
}

// UploadPhoto handles POST /api/projects/{id}/photos/upload. The image goes
// into the media directory and the photo points at its URL. Optional form
// fields: title, notes, sessionId.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	m, ok := h.media.receive(w, r)
	if !ok {
		return
	}
	h.addPhoto(w, r, projects.PhotoInput{
		URI:       m.URL,
		Title:     r.FormValue("title"),
		Notes:     r.FormValue("notes"),
		SessionID: r.FormValue("sessionId"),
	})
}

func (h *Handler) addPhoto(w http.ResponseWriter, r *http.Request, in projects.PhotoInput) {
	id := chi.URLParam(r, "id")
	ph, err := h.projects.AddPhoto(r.Context(), id, in)
	if err != nil {
		writeError(w, err, "add photo failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, ph)
}

// UpdatePhoto handles PUT /api/projects/{id}/photos/{photoID}.
func (h *Handler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	var patch projects.PhotoPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	ph, err := h.projects.UpdatePhoto(r.Context(), id, chi.URLParam(r, "photoID"), patch)
	if err != nil {
		writeError(w, err, "update photo failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, ph)
}

// DeletePhoto handles DELETE /api/projects/{id}/photos/{photoID}.
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.projects.DeletePhoto(r.Context(), id, chi.URLParam(r, "photoID")); err != nil {
		writeError(w, err, "delete photo failed", slog.String("project_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCover handles PUT /api/projects/{id}/cover with {"photoId": "..."}.
func (h *Handler) SetCover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoID string `json:"photoId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	p, err := h.projects.SetCoverPhoto(r.Context(), id, req.PhotoID)
	if err != nil {
		writeError(w, err, "set cover failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

// UpdateSession handles PATCH /api/projects/{id}/sessions/{sessionID}.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch projects.SessionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := h.projects.UpdateSession(r.Context(), id, chi.URLParam(r, "sessionID"), patch)
	if err != nil {
		writeError(w, err, "update session failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// AddPattern handles POST /api/projects/{id}/patterns.
func (h *Handler) AddPattern(w http.ResponseWriter, r *http.Request) {
	var in projects.PatternInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	pt, err := h.projects.AddPattern(r.Context(), id, in)
	if err != nil {
		writeError(w, err, "add pattern failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, pt)
}

// UpdatePattern handles PUT /api/projects/{id}/patterns/{patternID}.
func (h *Handler) UpdatePattern(w http.ResponseWriter, r *http.Request) {
	var in projects.PatternInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	pt, err := h.projects.UpdatePattern(r.Context(), id, chi.URLParam(r, "patternID"), in)
	if err != nil {
		writeError(w, err, "update pattern failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

// DeletePattern handles DELETE /api/projects/{id}/patterns/{patternID}.
func (h *Handler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.projects.DeletePattern(r.Context(), id, chi.URLParam(r, "patternID")); err != nil {
		writeError(w, err, "delete pattern failed", slog.String("project_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachPatternPDF handles PUT /api/projects/{id}/patterns/{patternID}/pdf.
func (h *Handler) AttachPatternPDF(w http.ResponseWriter, r *http.Request) {
	var pdf models.PatternPDF
	if !decodeJSON(w, r, &pdf) {
		return
	}
	id := chi.URLParam(r, "id")
	pt, err := h.projects.AttachPatternPDF(r.Context(), id, chi.URLParam(r, "patternID"), pdf)
	if err != nil {
		writeError(w, err, "attach pdf failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

// LinkPattern handles POST /api/projects/{id}/patterns/{patternID}/link and
// adds another timeline item for an existing wishlist pattern.
func (h *Handler) LinkPattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, err := h.projects.LinkPattern(r.Context(), id, chi.URLParam(r, "patternID"))
	if err != nil {
		writeError(w, err, "link pattern failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// AddAnnotation handles POST /api/projects/{id}/timeline/{itemID}/annotations.
func (h *Handler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	it, err := h.projects.AddAnnotation(r.Context(), id, chi.URLParam(r, "itemID"), req.Text)
	if err != nil {
		writeError(w, err, "add annotation failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteAnnotation handles DELETE /api/projects/{id}/timeline/{itemID}/annotations/{index}.
func (h *Handler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	id := chi.URLParam(r, "id")
	it, err := h.projects.DeleteAnnotation(r.Context(), id, chi.URLParam(r, "itemID"), index)
	if err != nil {
		writeError(w, err, "delete annotation failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}
