package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/craftfolder/internal/session"
)

// counterName extracts the counter name from the URL. Names may contain
// spaces and other escaped characters.
func counterName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// OpenTracker handles POST /api/projects/{id}/tracking.
func (h *Handler) OpenTracker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.sessions.Open(id)
	if err != nil {
		writeError(w, err, "open tracker failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, t.View())
}

// ListTrackers handles GET /api/tracking.
func (h *Handler) ListTrackers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"trackers": h.sessions.List()})
}

// GetTracker handles GET /api/tracking/{trackerID}.
func (h *Handler) GetTracker(w http.ResponseWriter, r *http.Request) {
	h.withTracker(w, r, func(*session.Tracker) error { return nil })
}

// DiscardTracker handles DELETE /api/tracking/{trackerID}.
func (h *Handler) DiscardTracker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackerID")
	if err := h.sessions.Discard(id); err != nil {
		writeError(w, err, "discard tracker failed", slog.String("tracker_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartTimer handles POST /api/tracking/{trackerID}/start.
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	h.withTracker(w, r, (*session.Tracker).Start)
}

// PauseTimer handles POST /api/tracking/{trackerID}/pause.
func (h *Handler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	h.withTracker(w, r, (*session.Tracker).Pause)
}

// ResetTimer handles POST /api/tracking/{trackerID}/reset.
func (h *Handler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	h.withTracker(w, r, (*session.Tracker).ResetTimer)
}

// SaveTracker handles POST /api/tracking/{trackerID}/save. The body is
// optional.
func (h *Handler) SaveTracker(w http.ResponseWriter, r *http.Request) {
	var req session.SaveRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "trackerID")
	sess, err := h.sessions.Save(r.Context(), id, req)
	if err != nil {
		writeError(w, err, "save session failed", slog.String("tracker_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// AddCounter handles POST /api/tracking/{trackerID}/counters with {"name": "..."}.
func (h *Handler) AddCounter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.withTracker(w, r, func(t *session.Tracker) error { return t.AddCounter(req.Name) })
}

// RemoveCounter handles DELETE /api/tracking/{trackerID}/counters/{name}.
func (h *Handler) RemoveCounter(w http.ResponseWriter, r *http.Request) {
	name := counterName(r)
	h.withTracker(w, r, func(t *session.Tracker) error { return t.RemoveCounter(name) })
}

// IncrementCounter handles POST /api/tracking/{trackerID}/counters/{name}/increment.
func (h *Handler) IncrementCounter(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}
	name := counterName(r)
	h.withTracker(w, r, func(t *session.Tracker) error { return t.Increment(name, amount) })
}

// DecrementCounter handles POST /api/tracking/{trackerID}/counters/{name}/decrement.
func (h *Handler) DecrementCounter(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}
	name := counterName(r)
	h.withTracker(w, r, func(t *session.Tracker) error { return t.Decrement(name, amount) })
}

// ResetCounter handles POST /api/tracking/{trackerID}/counters/{name}/reset.
func (h *Handler) ResetCounter(w http.ResponseWriter, r *http.Request) {
	name := counterName(r)
	h.withTracker(w, r, func(t *session.Tracker) error { return t.ResetCounter(name) })
}

// ResetCounters handles POST /api/tracking/{trackerID}/counters/reset.
func (h *Handler) ResetCounters(w http.ResponseWriter, r *http.Request) {
	h.withTracker(w, r, (*session.Tracker).ResetCounters)
}

// readAmount reads an optional {"amount": n} body. It defaults to 1.
func readAmount(w http.ResponseWriter, r *http.Request) (int, bool) {
	req := struct {
		Amount int `json:"amount"`
	}{Amount: 1}
	if !decodeOptionalJSON(w, r, &req) {
		return 0, false
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("amount must not be negative"))
		return 0, false
	}
	return req.Amount, true
}

// withTracker looks up the tracker, applies fn and writes its view.
func (h *Handler) withTracker(w http.ResponseWriter, r *http.Request, fn func(*session.Tracker) error) {
	id := chi.URLParam(r, "trackerID")
	t, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, err, "get tracker failed", slog.String("tracker_id", id))
		return
	}
	if err := fn(t); err != nil {
		writeError(w, err, "tracker update failed", slog.String("tracker_id", id))
		return
	}
	writeJSON(w, http.StatusOK, t.View())
}
