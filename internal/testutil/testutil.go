// Package testutil provides shared test helpers for setting up storage and fixtures.
package testutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/counter"
	"github.com/starford/craftfolder/internal/kvstore"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/storage"
)

// KV creates a temporary SQLite key/value store that is automatically cleaned up.
func KV(t *testing.T) kvstore.Store {
	t.Helper()
	kv, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "craftfolder-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// Dir creates a temporary directory with a storage provider rooted at it.
func Dir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// Logger returns a logger that only prints errors, to keep test output quiet.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Project returns a populated project with random names and stable structure:
// two photos, one session and a timeline entry for each.
func Project() models.Project {
	now := models.Now()
	craft := models.CraftCrochet
	if randomdata.Boolean() {
		craft = models.CraftCrossStitch
	}

	counters := counter.New("Rows", "Stitches")
	counters.Increment("Rows", randomdata.Number(1, 50))

	p := models.Project{
		ID:        uuid.NewString(),
		Title:     randomdata.SillyName(),
		CraftType: craft,
		Notes:     randomdata.Paragraph(),
		Photos: []models.ProjectPhoto{
			{ID: uuid.NewString(), URI: fmt.Sprintf("file:///%s.jpg", randomdata.SillyName()), CreatedAt: now - 3000},
			{ID: uuid.NewString(), URI: fmt.Sprintf("file:///%s.jpg", randomdata.SillyName()), CreatedAt: now - 1000, Title: randomdata.SillyName()},
		},
		Sessions: []models.Session{
			{ID: uuid.NewString(), CreatedAt: now - 2000, Counters: counters, Seconds: randomdata.Number(60, 3600)},
		},
		Defaults:  &models.ProjectDefaults{Counters: []string{"Rows", "Stitches"}},
		CreatedAt: now - 5000,
	}
	p.Timeline = []models.TimelineItem{
		{ID: uuid.NewString(), Type: models.TimelinePhoto, PhotoID: p.Photos[1].ID, CreatedAt: p.Photos[1].CreatedAt},
		{ID: uuid.NewString(), Type: models.TimelineSession, SessionID: p.Sessions[0].ID, CreatedAt: p.Sessions[0].CreatedAt},
		{ID: uuid.NewString(), Type: models.TimelinePhoto, PhotoID: p.Photos[0].ID, CreatedAt: p.Photos[0].CreatedAt},
	}
	return p
}

// CollectionItem returns a random yarn or thread.
func CollectionItem() models.CollectionItem {
	typ := models.ItemYarn
	if randomdata.Boolean() {
		typ = models.ItemThread
	}
	return models.CollectionItem{
		ID:       uuid.NewString(),
		Name:     randomdata.SillyName(),
		Type:     typ,
		Brand:    randomdata.LastName(),
		Colour:   randomdata.StringSample("Cream", "Teal", "Mustard", "Rose"),
		Material: randomdata.StringSample("Wool", "Cotton", "Acrylic"),
		Stock:    randomdata.Number(1, 10),
	}
}
