// Package projects owns the in-memory project list and mirrors it to storage.
//
// Store is the single writer: every mutation runs under one lock, replaces
// the affected project with an updated copy and rewrites the whole list.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/kvstore"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/persist"
)

// StorageKey is the key holding the project list.
const StorageKey = "@projects"

// ErrPersist marks a mutation that was applied in memory but could not be
// written to storage.
var ErrPersist = errors.New("projects: persist failed")

// ChangeKind describes what happened to a project.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeReset   ChangeKind = "reset"
)

// Change is delivered to the OnChange hook after a mutation.
// ProjectID is empty for ChangeReset.
type Change struct {
	Kind      ChangeKind
	ProjectID string
}

// ProjectInput is the editable part of a project. A blank ID creates one.
type ProjectInput struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	CraftType models.CraftType        `json:"craftType"`
	Notes     string                  `json:"notes"`
	Defaults  *models.ProjectDefaults `json:"defaults"`
}

// Validate checks the input after normalisation.
func (in *ProjectInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required.Error("title is required")),
		validation.Field(&in.CraftType, validation.Required, validation.In(models.CraftTypes...)),
		validation.Field(&in.Defaults, validation.By(validateDefaults)),
	)
}

func validateDefaults(value interface{}) error {
	d, _ := value.(*models.ProjectDefaults)
	if d == nil {
		return nil
	}
	return validation.ValidateStruct(d,
		validation.Field(&d.Counters, validation.Each(validation.Required)),
		validation.Field(&d.CraftType, validation.In(models.CraftTypes...)),
	)
}

func (in *ProjectInput) normalize() {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.CraftType == "" {
		in.CraftType = models.CraftCrochet
	}
	if in.Defaults != nil {
		counters := make([]string, 0, len(in.Defaults.Counters))
		for _, c := range in.Defaults.Counters {
			c = strings.TrimSpace(c)
			if c != "" && !slices.Contains(counters, c) {
				counters = append(counters, c)
			}
		}
		in.Defaults.Counters = counters
	}
}

// Store holds the project list.
type Store struct {
	coll   *persist.Collection[models.Project]
	logger *slog.Logger

	mu       sync.RWMutex
	items    []models.Project
	onChange func(Change)
}

// NewStore creates an empty store backed by kv. Call Load to read saved data.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		coll: persist.NewCollection[models.Project](kv, StorageKey,
			persist.WithMigration(0, MigrateV0),
			persist.WithLogger(logger),
		),
		logger: logger,
		items:  []models.Project{},
	}
}

// OnChange registers fn to run after every mutation, outside the store lock.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load replaces the in-memory list with the stored one. On failure the store
// keeps an empty list and the error is logged and returned, so callers can
// tell "no data" apart from "unreadable data".
func (s *Store) Load(ctx context.Context) error {
	items, err := s.coll.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.items = []models.Project{}
		s.logger.Error("projects: load failed, starting empty", slog.String("error", err.Error()))
		return fmt.Errorf("projects: load: %w", err)
	}
	for i := range items {
		items[i].Normalize()
	}
	s.items = items
	s.logger.Info("projects: loaded", slog.Int("count", len(items)))
	return nil
}

// Decode parses an exported or legacy project list, applying migrations.
func (s *Store) Decode(raw []byte) ([]models.Project, error) {
	items, err := s.coll.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("projects: decode: %w", err)
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

// List returns a copy of every project in stored order.
func (s *Store) List() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Project, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the project with id.
func (s *Store) Get(id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.index(id)
	if idx < 0 {
		return models.Project{}, fmt.Errorf("projects: %s: %w", id, apperr.ErrNotFound)
	}
	return s.items[idx].Clone(), nil
}

// Timeline returns the project's timeline newest first with every item
// resolved. Items whose target is gone come back with NotFound set.
func (s *Store) Timeline(projectID string) ([]models.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.index(projectID)
	if idx < 0 {
		return nil, fmt.Errorf("projects: %s: %w", projectID, apperr.ErrNotFound)
	}
	return s.items[idx].SortedTimeline(), nil
}

// Save creates a project when in.ID is blank and otherwise updates the
// title, craft type, notes and defaults of an existing one.
func (s *Store) Save(ctx context.Context, in ProjectInput) (models.Project, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return models.Project{}, apperr.Invalid(err)
	}

	if in.ID != "" {
		return s.update(ctx, in.ID, func(p *models.Project) error {
			p.Title = in.Title
			p.CraftType = in.CraftType
			p.Notes = in.Notes
			p.Defaults = in.Defaults
			return nil
		})
	}

	p := models.Project{
		ID:        uuid.NewString(),
		Title:     in.Title,
		CraftType: in.CraftType,
		Notes:     in.Notes,
		Defaults:  in.Defaults,
		CreatedAt: models.Now(),
	}
	p.Normalize()

	s.mu.Lock()
	err := s.commit(ctx, append(slices.Clone(s.items), p))
	fn := s.onChange
	s.mu.Unlock()

	notify(fn, Change{Kind: ChangeCreated, ProjectID: p.ID})
	return p.Clone(), err
}

// Delete removes the project. Nothing that refers to it elsewhere is touched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("projects: %s: %w", id, apperr.ErrNotFound)
	}
	err := s.commit(ctx, slices.Delete(slices.Clone(s.items), idx, idx+1))
	fn := s.onChange
	s.mu.Unlock()

	notify(fn, Change{Kind: ChangeDeleted, ProjectID: id})
	return err
}

// ReplaceAll swaps the whole list for items.
func (s *Store) ReplaceAll(ctx context.Context, items []models.Project) error {
	next := make([]models.Project, len(items))
	for i, p := range items {
		next[i] = p.Clone()
		next[i].Normalize()
	}

	s.mu.Lock()
	err := s.commit(ctx, next)
	fn := s.onChange
	s.mu.Unlock()

	notify(fn, Change{Kind: ChangeReset})
	return err
}

// Merge appends items to the list. An incoming project whose id is already
// taken is given a fresh id. It returns the number of projects added.
func (s *Store) Merge(ctx context.Context, items []models.Project) (int, error) {
	s.mu.Lock()
	next := slices.Clone(s.items)
	seen := make(map[string]struct{}, len(next)+len(items))
	for _, p := range next {
		seen[p.ID] = struct{}{}
	}
	for _, p := range items {
		p = p.Clone()
		p.Normalize()
		if _, dup := seen[p.ID]; dup || p.ID == "" {
			p.ID = uuid.NewString()
		}
		seen[p.ID] = struct{}{}
		next = append(next, p)
	}
	err := s.commit(ctx, next)
	fn := s.onChange
	s.mu.Unlock()

	notify(fn, Change{Kind: ChangeReset})
	return len(items), err
}

// Clear removes every project.
func (s *Store) Clear(ctx context.Context) error {
	return s.ReplaceAll(ctx, nil)
}

// update applies fn to a copy of the project and commits it.
func (s *Store) update(ctx context.Context, id string, fn func(p *models.Project) error) (models.Project, error) {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Project{}, fmt.Errorf("projects: %s: %w", id, apperr.ErrNotFound)
	}

	p := s.items[idx].Clone()
	if err := fn(&p); err != nil {
		s.mu.Unlock()
		return models.Project{}, err
	}

	next := slices.Clone(s.items)
	next[idx] = p
	err := s.commit(ctx, next)
	cb := s.onChange
	s.mu.Unlock()

	notify(cb, Change{Kind: ChangeUpdated, ProjectID: id})
	return p.Clone(), err
}

// commit installs next as the current list and persists it. The in-memory
// list keeps the change even when the write fails; the error is returned.
// Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, next []models.Project) error {
	s.items = next
	if err := s.coll.Save(ctx, next); err != nil {
		s.logger.Error("projects: save failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(p models.Project) bool { return p.ID == id })
}

func notify(fn func(Change), c Change) {
	if fn != nil {
		fn(c)
	}
}
