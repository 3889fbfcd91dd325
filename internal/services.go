package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/craftfolder/internal/collection"
	"github.com/starford/craftfolder/internal/kvstore"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/settings"
	"github.com/starford/craftfolder/internal/storage"
	"github.com/starford/craftfolder/internal/transfer"
)

// services are the stores and file areas shared by every command.
type services struct {
	kv         kvstore.Store
	projects   *projects.Store
	collection *collection.Store
	settings   *settings.Store
	transfer   *transfer.Service
	media      *storage.FS
	exports    *storage.FS
}

// newLogger builds the JSON logger for cfg and installs it as default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openServices creates the data directories, opens the key/value store and
// loads every store. A store that fails to load starts empty; the failure is
// logged and the app keeps running.
func openServices(ctx context.Context, cfg *Config, logger *slog.Logger) (*services, error) {
	dirs := []string{filepath.Dir(cfg.Storage.Path), cfg.Media.Path, cfg.Export.Path}
	if cfg.Inbox.Enabled {
		dirs = append(dirs, cfg.Inbox.Path)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	kv, err := kvstore.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	media, err := storage.NewFS(cfg.Media.Path)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("init media storage: %w", err)
	}
	exports, err := storage.NewFS(cfg.Export.Path)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("init export storage: %w", err)
	}

	s := &services{
		kv:         kv,
		projects:   projects.NewStore(kv, logger),
		collection: collection.NewStore(kv, logger),
		settings:   settings.NewStore(kv, logger),
		media:      media,
		exports:    exports,
	}
	// kv goes last so stray keys (legacy blobs, unknown settings) are wiped too.
	s.transfer = transfer.NewService(s.projects, exports, logger, s.collection, s.settings, kv)

	if err := errors.Join(
		s.projects.Load(ctx),
		s.collection.Load(ctx),
		s.settings.Load(ctx),
	); err != nil {
		logger.Warn("starting with partial data", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *services) Close() error {
	return s.kv.Close()
}
