package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/craftfolder/internal/collection"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/session"
	"github.com/starford/craftfolder/internal/settings"
	"github.com/starford/craftfolder/internal/storage"
	"github.com/starford/craftfolder/internal/transfer"
)

// Deps are the services behind the API.
type Deps struct {
	Projects   *projects.Store
	Sessions   *session.Manager
	Collection *collection.Store
	Settings   *settings.Store
	Transfer   *transfer.Service
	Media      storage.Provider
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// Locale is used for currency resolution when a request carries none.
	Locale string
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced. Media files
// are served without auth so they can back plain <img> tags.
func NewRouter(d Deps, authEnabled bool, token string) chi.Router {
	h := NewHandler(d)
	mh := NewMediaHandler(d.Media)

	r := chi.NewRouter()
	r.Get("/media/{filename}", mh.ServeFile)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProject)
				r.Put("/", h.UpdateProject)
				r.Delete("/", h.DeleteProject)
				r.Get("/timeline", h.Timeline)

				r.Post("/photos", h.AddPhoto)
				r.Post("/photos/upload", h.UploadPhoto)
				r.Put("/photos/{photoID}", h.UpdatePhoto)
				r.Delete("/photos/{photoID}", h.DeletePhoto)
				r.Put("/cover", h.SetCover)

				r.Patch("/sessions/{sessionID}", h.UpdateSession)

				r.Post("/patterns", h.AddPattern)
				r.Put("/patterns/{patternID}", h.UpdatePattern)
				r.Delete("/patterns/{patternID}", h.DeletePattern)
				r.Put("/patterns/{patternID}/pdf", h.AttachPatternPDF)
				r.Post("/patterns/{patternID}/link", h.LinkPattern)
				r.Post("/timeline/{itemID}/annotations", h.AddAnnotation)
				r.Delete("/timeline/{itemID}/annotations/{index}", h.DeleteAnnotation)

				r.Post("/tracking", h.OpenTracker)
			})
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/", h.ListTrackers)
			r.Route("/{trackerID}", func(r chi.Router) {
				r.Get("/", h.GetTracker)
				r.Delete("/", h.DiscardTracker)
				r.Post("/start", h.StartTimer)
				r.Post("/pause", h.PauseTimer)
				r.Post("/reset", h.ResetTimer)
				r.Post("/save", h.SaveTracker)
				r.Post("/counters", h.AddCounter)
				r.Post("/counters/reset", h.ResetCounters)
				r.Delete("/counters/{name}", h.RemoveCounter)
				r.Post("/counters/{name}/increment", h.IncrementCounter)
				r.Post("/counters/{name}/decrement", h.DecrementCounter)
				r.Post("/counters/{name}/reset", h.ResetCounter)
			})
		})

		r.Route("/collection", func(r chi.Router) {
			r.Get("/", h.ListCollection)
			r.Post("/", h.AddCollectionItem)
			r.Get("/{id}", h.GetCollectionItem)
			r.Put("/{id}", h.UpdateCollectionItem)
			r.Delete("/{id}", h.RemoveCollectionItem)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Put("/settings/currency", h.SetCurrency)
		r.Get("/currencies", h.ListCurrencies)
		r.Post("/cost", h.CalculateCost)

		r.Get("/export", h.DownloadExport)
		r.Post("/export", h.Export)
		r.Post("/import", h.Import)
		r.Delete("/data", h.ClearData)

		r.Post("/media", mh.Upload)

		if d.Events != nil {
			r.Get("/events", d.Events.ServeHTTP)
		}
	})

	return r
}
