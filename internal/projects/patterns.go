package projects

import (
	"context"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
)

// PatternInput describes a wishlist pattern.
type PatternInput struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Notes    string `json:"notes"`
	ImageURI string `json:"imageUri"`
}

// Validate checks the input.
func (in *PatternInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required.Error("title is required")),
	)
}

// AddPattern adds a pattern to the project wishlist and links it on the
// timeline.
func (s *Store) AddPattern(ctx context.Context, projectID string, in PatternInput) (models.Pattern, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return models.Pattern{}, apperr.Invalid(err)
	}

	pt := models.Pattern{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Link:      strings.TrimSpace(in.Link),
		Notes:     in.Notes,
		ImageURI:  in.ImageURI,
		CreatedAt: models.Now(),
	}
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		p.PatternWishlist = append(p.PatternWishlist, pt)
		p.Timeline = append([]models.TimelineItem{patternItem(pt.ID, pt.CreatedAt)}, p.Timeline...)
		return nil
	})
	return pt, err
}

// LinkPattern adds another timeline entry for a wishlist pattern.
func (s *Store) LinkPattern(ctx context.Context, projectID, patternID string) (models.TimelineItem, error) {
	var out models.TimelineItem
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		if p.FindPattern(patternID) == nil {
			return fmt.Errorf("projects: pattern %s: %w", patternID, apperr.ErrNotFound)
		}
		out = patternItem(patternID, models.Now())
		p.Timeline = append([]models.TimelineItem{out}, p.Timeline...)
		return nil
	})
	return out, err
}

// UpdatePattern replaces title, link, notes and image of a wishlist pattern.
func (s *Store) UpdatePattern(ctx context.Context, projectID, patternID string, in PatternInput) (models.Pattern, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return models.Pattern{}, apperr.Invalid(err)
	}

	var out models.Pattern
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		pt := p.FindPattern(patternID)
		if pt == nil {
			return fmt.Errorf("projects: pattern %s: %w", patternID, apperr.ErrNotFound)
		}
		pt.Title = in.Title
		pt.Link = strings.TrimSpace(in.Link)
		pt.Notes = in.Notes
		pt.ImageURI = in.ImageURI
		out = pt.Clone()
		return nil
	})
	return out, err
}

// AttachPatternPDF sets the PDF of a wishlist pattern.
func (s *Store) AttachPatternPDF(ctx context.Context, projectID, patternID string, pdf models.PatternPDF) (models.Pattern, error) {
	pdf.URI = strings.TrimSpace(pdf.URI)
	if pdf.URI == "" {
		return models.Pattern{}, apperr.Invalidf("pdf uri is required")
	}
	if pdf.AddedAt == 0 {
		pdf.AddedAt = models.Now()
	}

	var out models.Pattern
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		pt := p.FindPattern(patternID)
		if pt == nil {
			return fmt.Errorf("projects: pattern %s: %w", patternID, apperr.ErrNotFound)
		}
		pt.PDF = &pdf
		out = pt.Clone()
		return nil
	})
	return out, err
}

// DeletePattern removes a wishlist pattern. Timeline items linking it stay.
func (s *Store) DeletePattern(ctx context.Context, projectID, patternID string) error {
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		if p.FindPattern(patternID) == nil {
			return fmt.Errorf("projects: pattern %s: %w", patternID, apperr.ErrNotFound)
		}
		p.PatternWishlist = slices.DeleteFunc(p.PatternWishlist, func(pt models.Pattern) bool {
			return pt.ID == patternID
		})
		if len(p.PatternWishlist) == 0 {
			p.PatternWishlist = nil
		}
		return nil
	})
	return err
}

// AddAnnotation appends text to a pattern timeline item. Blank text is
// ignored and the item is returned unchanged.
func (s *Store) AddAnnotation(ctx context.Context, projectID, itemID, text string) (models.TimelineItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		p, err := s.Get(projectID)
		if err != nil {
			return models.TimelineItem{}, err
		}
		it, err := patternTimelineItem(&p, itemID)
		if err != nil {
			return models.TimelineItem{}, err
		}
		return it.Clone(), nil
	}

	var out models.TimelineItem
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		it, err := patternTimelineItem(p, itemID)
		if err != nil {
			return err
		}
		it.Annotations = append(it.Annotations, text)
		out = it.Clone()
		return nil
	})
	return out, err
}

// DeleteAnnotation removes the annotation at index from a pattern timeline item.
func (s *Store) DeleteAnnotation(ctx context.Context, projectID, itemID string, index int) (models.TimelineItem, error) {
	var out models.TimelineItem
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		it, err := patternTimelineItem(p, itemID)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(it.Annotations) {
			return fmt.Errorf("projects: annotation %d: %w", index, apperr.ErrNotFound)
		}
		it.Annotations = slices.Delete(it.Annotations, index, index+1)
		if len(it.Annotations) == 0 {
			it.Annotations = nil
		}
		out = it.Clone()
		return nil
	})
	return out, err
}

func patternTimelineItem(p *models.Project, itemID string) (*models.TimelineItem, error) {
	it := p.FindTimelineItem(itemID)
	if it == nil {
		return nil, fmt.Errorf("projects: timeline item %s: %w", itemID, apperr.ErrNotFound)
	}
	if it.Type != models.TimelinePattern {
		return nil, apperr.Invalidf("only pattern timeline items take annotations")
	}
	return it, nil
}

func patternItem(patternID string, at models.Timestamp) models.TimelineItem {
	return models.TimelineItem{
		ID:        uuid.NewString(),
		Type:      models.TimelinePattern,
		PatternID: patternID,
		CreatedAt: at,
	}
}
