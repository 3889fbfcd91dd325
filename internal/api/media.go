package api

import (
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/craftfolder/internal/media"
	"github.com/starford/craftfolder/internal/storage"
)

// MediaHandler stores uploaded photos and pattern PDFs and serves them back.
type MediaHandler struct {
	files storage.Provider
}

// NewMediaHandler creates a handler over the media directory.
func NewMediaHandler(files storage.Provider) *MediaHandler {
	return &MediaHandler{files: files}
}

// ServeFile handles GET /media/{filename}.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := media.SafeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	abs, err := h.files.Abs(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); errors.Is(statErr, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /media (multipart/form-data, field "file").
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	m, ok := h.receive(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// receive stores the "file" part of a multipart request. On failure it
// writes the error response and returns false.
func (h *MediaHandler) receive(w http.ResponseWriter, r *http.Request) (media.Stored, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxSize)

	if err := r.ParseMultipartForm(media.MaxSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return media.Stored{}, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return media.Stored{}, false
	}
	defer file.Close()

	m, err := h.save(file)
	if err != nil {
		if errors.Is(err, media.ErrUnsupported) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			writeError(w, err, "media upload failed")
		}
		return media.Stored{}, false
	}
	return m, true
}

func (h *MediaHandler) save(file multipart.File) (media.Stored, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return media.Stored{}, err
	}
	return media.Save(h.files, data)
}
