// Package inbox imports project export files dropped into a watched
// directory.
package inbox

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/storage"
	"github.com/starford/craftfolder/internal/transfer"
)

// Subdirectories handled files are moved into.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

const debounce = 200 * time.Millisecond

// Importer merges the content of an export file.
type Importer interface {
	Import(ctx context.Context, raw []byte, mode string) (transfer.ImportResult, error)
}

// EventCallback is called after each handled file. err is nil when the file
// was imported.
type EventCallback func(name string, res transfer.ImportResult, err error)

// Watch imports every *.json file already in the inbox, then watches it and
// imports new or rewritten files until ctx is cancelled. Events are
// debounced so a file is read once its writer has gone quiet.
func Watch(ctx context.Context, files storage.Provider, imp Importer, logger *slog.Logger, cb EventCallback) error {
	root, err := files.Abs("")
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("inbox: watching", slog.String("dir", root))

	Scan(ctx, files, imp, logger, cb)

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case <-fire:
			fire = nil
			for name := range pending {
				handle(ctx, files, imp, logger, cb, name)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := path.Base(strings.ReplaceAll(ev.Name, "\\", "/"))
			if !wanted(name) {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// Scan imports every *.json file currently in the inbox.
func Scan(ctx context.Context, files storage.Provider, imp Importer, logger *slog.Logger, cb EventCallback) {
	metas, err := files.List("", ".json")
	if err != nil {
		logger.Warn("inbox: list failed", slog.String("error", err.Error()))
		return
	}
	for _, m := range metas {
		handle(ctx, files, imp, logger, cb, m.Path)
	}
}

// handle imports one file and files it under processed/ or failed/. A file
// that vanished before it could be read is ignored. Errors other than a bad
// file or a failed save leave the file where it is for the next pass.
func handle(ctx context.Context, files storage.Provider, imp Importer, logger *slog.Logger, cb EventCallback, name string) {
	data, err := files.Read(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("inbox: read failed", slog.String("file", name), slog.String("error", err.Error()))
		}
		return
	}

	res, err := imp.Import(ctx, data, transfer.ModeMerge)
	dest := ""
	switch {
	case err == nil, errors.Is(err, projects.ErrPersist):
		dest = path.Join(ProcessedDir, name)
	case errors.Is(err, apperr.ErrValidation):
		dest = path.Join(FailedDir, name)
	}

	if err != nil {
		logger.Error("inbox: import failed", slog.String("file", name), slog.String("error", err.Error()))
	} else {
		logger.Info("inbox: imported", slog.String("file", name), slog.Int("count", res.Count))
	}

	if dest != "" {
		if mvErr := files.Move(name, dest); mvErr != nil {
			logger.Warn("inbox: move failed", slog.String("file", name), slog.String("error", mvErr.Error()))
		}
	}
	if cb != nil {
		cb(name, res, err)
	}
}

func wanted(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".")
}
