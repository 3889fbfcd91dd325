// Package transfer exports projects to JSON files and imports them back.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/checksum"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/storage"
)

// Import modes.
const (
	ModeMerge   = "merge"
	ModeReplace = "replace"
)

// Projects is the project store surface used here.
type Projects interface {
	List() []models.Project
	Decode(raw []byte) ([]models.Project, error)
	ReplaceAll(ctx context.Context, items []models.Project) error
	Merge(ctx context.Context, items []models.Project) (int, error)
	Clear(ctx context.Context) error
}

// Clearer wipes one store.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	Count    int    `json:"count"`
}

// ImportResult reports what an import did.
type ImportResult struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

// Service runs exports, imports and the clear-all reset.
type Service struct {
	projects Projects
	files    storage.Provider
	others   []Clearer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a service writing exports to files. others are cleared
// after projects by ClearAll.
func NewService(p Projects, files storage.Provider, logger *slog.Logger, others ...Clearer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{projects: p, files: files, others: others, logger: logger, now: time.Now}
}

// Marshal renders the current projects as indented JSON.
func (s *Service) Marshal() ([]byte, int, error) {
	items := s.projects.List()
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("transfer: encode: %w", err)
	}
	return data, len(items), nil
}

// Export writes projects-<unixms>.json into the export directory.
func (s *Service) Export(ctx context.Context) (ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return ExportResult{}, err
	}
	data, n, err := s.Marshal()
	if err != nil {
		return ExportResult{}, err
	}

	name := fmt.Sprintf("projects-%d.json", s.now().UnixMilli())
	if err := s.files.Write(name, data); err != nil {
		return ExportResult{}, fmt.Errorf("transfer: write %s: %w", name, err)
	}
	abs, err := s.files.Abs(name)
	if err != nil {
		return ExportResult{}, err
	}

	s.logger.Info("transfer: exported",
		slog.String("path", abs),
		slog.Int("count", n),
		slog.String("checksum", checksum.Short(data)))
	return ExportResult{
		Path:     abs,
		Size:     int64(len(data)),
		Checksum: checksum.Sum(data),
		Count:    n,
	}, nil
}

// Import parses raw as a project list and applies it with mode. Only the
// JSON shape is checked; legacy counter formats are migrated.
func (s *Service) Import(ctx context.Context, raw []byte, mode string) (ImportResult, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeMerge
	}
	if mode != ModeMerge && mode != ModeReplace {
		return ImportResult{}, apperr.Invalidf("mode must be %q or %q", ModeMerge, ModeReplace)
	}

	items, err := s.projects.Decode(raw)
	if err != nil {
		return ImportResult{}, apperr.Invalid(fmt.Errorf("transfer: invalid import file: %w", err))
	}

	res := ImportResult{Mode: mode, Count: len(items)}
	if mode == ModeReplace {
		err = s.projects.ReplaceAll(ctx, items)
	} else {
		res.Count, err = s.projects.Merge(ctx, items)
	}
	if err != nil {
		return res, fmt.Errorf("transfer: import: %w", err)
	}

	s.logger.Info("transfer: imported", slog.String("mode", mode), slog.Int("count", res.Count))
	return res, nil
}

// ClearAll wipes projects and every other registered store, in order. Every
// store is attempted; the errors are joined.
func (s *Service) ClearAll(ctx context.Context) error {
	errs := []error{s.projects.Clear(ctx)}
	for _, c := range s.others {
		errs = append(errs, c.Clear(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("transfer: clear: %w", err)
	}
	s.logger.Info("transfer: all data cleared")
	return nil
}
