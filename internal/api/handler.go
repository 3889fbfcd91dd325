package api

import (
	"net/http"
	"strings"

	"github.com/starford/craftfolder/internal/collection"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/session"
	"github.com/starford/craftfolder/internal/settings"
	"github.com/starford/craftfolder/internal/transfer"
)

// Handler holds API route handlers.
type Handler struct {
	projects   *projects.Store
	sessions   *session.Manager
	collection *collection.Store
	settings   *settings.Store
	transfer   *transfer.Service
	media      *MediaHandler
	locale     string
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		projects:   d.Projects,
		sessions:   d.Sessions,
		collection: d.Collection,
		settings:   d.Settings,
		transfer:   d.Transfer,
		media:      NewMediaHandler(d.Media),
		locale:     d.Locale,
	}
}

// requestLocale picks the locale for currency resolution: the locale query
// parameter, then the first Accept-Language tag, then the server default.
func (h *Handler) requestLocale(r *http.Request) string {
	if l := r.URL.Query().Get("locale"); l != "" {
		return l
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		tag, _, _ := strings.Cut(al, ",")
		tag, _, _ = strings.Cut(tag, ";")
		if tag = strings.TrimSpace(tag); tag != "" && tag != "*" {
			return tag
		}
	}
	return h.locale
}
