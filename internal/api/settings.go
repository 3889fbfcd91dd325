package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/starford/craftfolder/internal/cost"
	"github.com/starford/craftfolder/internal/settings"
)

const maxImportBytes = 50 << 20 // 50 MB

type settingsResponse struct {
	Settings settings.Settings `json:"settings"`
	Currency cost.Currency     `json:"currency"`
}

func (h *Handler) settingsBody(r *http.Request, st settings.Settings) settingsResponse {
	cur, _ := cost.LookupCurrency(settings.Resolve(st, h.requestLocale(r)))
	return settingsResponse{Settings: st, Currency: cur}
}

// GetSettings handles GET /api/settings. The resolved display currency
// depends on the request locale.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settingsBody(r, h.settings.Get()))
}

// UpdateSettings handles PUT /api/settings with a partial settings object.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	st, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		writeError(w, err, "update settings failed")
		return
	}
	writeJSON(w, http.StatusOK, h.settingsBody(r, st))
}

// SetCurrency handles PUT /api/settings/currency with {"code": "auto"|"manual"|"EUR"...}.
func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := h.settings.SetCurrency(r.Context(), req.Code)
	if err != nil {
		writeError(w, err, "set currency failed")
		return
	}
	writeJSON(w, http.StatusOK, h.settingsBody(r, st))
}

// ListCurrencies handles GET /api/currencies.
func (h *Handler) ListCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"currencies": cost.Currencies})
}

// CalculateCost handles POST /api/cost. Without a currency in the body the
// user's display currency is used.
func (h *Handler) CalculateCost(w http.ResponseWriter, r *http.Request) {
	var in cost.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Currency == "" {
		in.Currency = h.settings.Currency(h.requestLocale(r))
	}
	res, err := cost.Calculate(in)
	if err != nil {
		writeError(w, err, "calculate cost failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Export handles POST /api/export and writes an export file on the server.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.transfer.Export(r.Context())
	if err != nil {
		writeError(w, err, "export failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// DownloadExport handles GET /api/export and streams the same JSON as an
// attachment.
func (h *Handler) DownloadExport(w http.ResponseWriter, _ *http.Request) {
	data, _, err := h.transfer.Marshal()
	if err != nil {
		writeError(w, err, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="projects.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import?mode=merge|replace with an exported
// project list as the body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("failed to read body: %v", err)))
		return
	}
	res, err := h.transfer.Import(r.Context(), raw, r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, err, "import failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ClearData handles DELETE /api/data and wipes projects, collection and
// settings.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.transfer.ClearAll(r.Context()); err != nil {
		writeError(w, err, "clear data failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
