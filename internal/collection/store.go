// Package collection keeps the user's yarn and thread inventory.
package collection

import (
	"context"
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

// StorageKey is the key holding the inventory.
const StorageKey = "@collection_items"

// Filter values accepted by List.
const (
	FilterAll    = "All"
	FilterYarn   = string(models.ItemYarn)
	FilterThread = string(models.ItemThread)
)

// ItemInput is the editable part of an item.
type ItemInput struct {
	Name     string          `json:"name"`
	Type     models.ItemType `json:"type"`
	Brand    string          `json:"brand"`
	Colour   string          `json:"colour"`
	Material string          `json:"material"`
	Weight   string          `json:"weight"`
	Stock    int             `json:"stock"`
	Image    string          `json:"image"`
}

// Validate checks the input after normalisation.
func (in *ItemInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required.Error("please enter a name")),
		validation.Field(&in.Type, validation.Required, validation.In(models.ItemTypes...)),
		validation.Field(&in.Stock, validation.Min(0)),
	)
}

func (in *ItemInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Colour = strings.TrimSpace(in.Colour)
	in.Material = strings.TrimSpace(in.Material)
	in.Weight = strings.TrimSpace(in.Weight)
	if in.Type == "" {
		in.Type = models.ItemYarn
	}
}

func (in *ItemInput) apply(it *models.CollectionItem) {
	it.Name = in.Name
	it.Type = in.Type
	it.Brand = in.Brand
	it.Colour = in.Colour
	it.Material = in.Material
	it.Weight = in.Weight
	it.Stock = in.Stock
	it.Image = in.Image
}

// Store holds the inventory and rewrites it in full after every change.
type Store struct {
	coll     *persist.Collection[models.CollectionItem]
	logger   *slog.Logger
	onChange func()

	mu    sync.RWMutex
	items []models.CollectionItem
}

// NewStore creates an empty store backed by kv.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		coll:   persist.NewCollection[models.CollectionItem](kv, StorageKey, persist.WithLogger(logger)),
		logger: logger,
		items:  []models.CollectionItem{},
	}
}

// OnChange registers fn to run after every mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load reads the stored inventory. On failure the store starts empty and
// the error is returned.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.coll.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.items = []models.CollectionItem{}
		s.logger.Error("collection: load failed, starting empty", slog.String("error", err.Error()))
		return fmt.Errorf("collection: load: %w", err)
	}
	s.items = items
	return nil
}

// List returns items matching filter ("All", "Yarn" or "Thread").
func (s *Store) List(filter string) ([]models.CollectionItem, error) {
	if filter == "" {
		filter = FilterAll
	}
	if err := validation.Validate(filter, validation.In(FilterAll, FilterYarn, FilterThread)); err != nil {
		return nil, apperr.Invalid(validation.Errors{"type": err})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CollectionItem, 0, len(s.items))
	for _, it := range s.items {
		if filter == FilterAll || string(it.Type) == filter {
			out = append(out, it)
		}
	}
	return out, nil
}

// Get returns the item with id.
func (s *Store) Get(id string) (models.CollectionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.index(id)
	if idx < 0 {
		return models.CollectionItem{}, fmt.Errorf("collection: %s: %w", id, apperr.ErrNotFound)
	}
	return s.items[idx], nil
}

// Add validates in and appends a new item. A zero stock is stored as 1.
func (s *Store) Add(ctx context.Context, in ItemInput) (models.CollectionItem, error) {
	in.normalize()
	if in.Stock == 0 {
		in.Stock = 1
	}
	if err := in.Validate(); err != nil {
		return models.CollectionItem{}, apperr.Invalid(err)
	}

	it := models.CollectionItem{ID: uuid.NewString()}
	in.apply(&it)

	s.mu.Lock()
	err := s.commit(ctx, append(slices.Clone(s.items), it))
	fn := s.onChange
	s.mu.Unlock()

	notify(fn)
	return it, err
}

// Update replaces the fields of an existing item.
func (s *Store) Update(ctx context.Context, id string, in ItemInput) (models.CollectionItem, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return models.CollectionItem{}, apperr.Invalid(err)
	}

	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.CollectionItem{}, fmt.Errorf("collection: %s: %w", id, apperr.ErrNotFound)
	}
	next := slices.Clone(s.items)
	in.apply(&next[idx])
	it := next[idx]
	err := s.commit(ctx, next)
	fn := s.onChange
	s.mu.Unlock()

	notify(fn)
	return it, err
}

// Remove deletes the item with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("collection: %s: %w", id, apperr.ErrNotFound)
	}
	err := s.commit(ctx, slices.Delete(slices.Clone(s.items), idx, idx+1))
	fn := s.onChange
	s.mu.Unlock()

	notify(fn)
	return err
}

// Clear removes every item.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.commit(ctx, []models.CollectionItem{})
	fn := s.onChange
	s.mu.Unlock()

	notify(fn)
	return err
}

// commit installs next and persists it. Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, next []models.CollectionItem) error {
	s.items = next
	if err := s.coll.Save(ctx, next); err != nil {
		s.logger.Error("collection: save failed", slog.String("error", err.Error()))
		return fmt.Errorf("collection: save: %w", err)
	}
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(it models.CollectionItem) bool { return it.ID == id })
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
