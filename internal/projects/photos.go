package projects

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
)

// PhotoInput describes a photo to add. With SessionID set the photo is
// also attached to that session.
type PhotoInput struct {
	URI       string `json:"uri"`
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	SessionID string `json:"sessionId"`
}

// Validate checks the input.
func (in *PhotoInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.URI, validation.Required.Error("uri is required")),
	)
}

// PhotoPatch edits a photo's title and notes. Nil fields are left unchanged.
type PhotoPatch struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

// AddPhoto appends a photo to the project gallery. Gallery photos get a
// photo timeline item; session photos are listed under their session instead.
func (s *Store) AddPhoto(ctx context.Context, projectID string, in PhotoInput) (models.ProjectPhoto, error) {
	in.URI = strings.TrimSpace(in.URI)
	if err := in.Validate(); err != nil {
		return models.ProjectPhoto{}, apperr.Invalid(err)
	}

	photo := models.ProjectPhoto{
		ID:        uuid.NewString(),
		URI:       in.URI,
		CreatedAt: models.Now(),
		Title:     strings.TrimSpace(in.Title),
		Notes:     in.Notes,
	}

	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		if in.SessionID != "" {
			sess := p.FindSession(in.SessionID)
			if sess == nil {
				return fmt.Errorf("projects: session %s: %w", in.SessionID, apperr.ErrNotFound)
			}
			sess.Photos = append(sess.Photos, photo)
			p.Photos = append(p.Photos, photo)
			return nil
		}
		p.Photos = append(p.Photos, photo)
		p.Timeline = append(p.Timeline, models.TimelineItem{
			ID:        uuid.NewString(),
			Type:      models.TimelinePhoto,
			PhotoID:   photo.ID,
			CreatedAt: photo.CreatedAt,
		})
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersist) {
		return models.ProjectPhoto{}, err
	}
	return photo, err
}

// UpdatePhoto edits the title and notes of a gallery photo and of any
// session copy of it.
func (s *Store) UpdatePhoto(ctx context.Context, projectID, photoID string, patch PhotoPatch) (models.ProjectPhoto, error) {
	var out models.ProjectPhoto
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		ph := p.FindPhoto(photoID)
		if ph == nil {
			return fmt.Errorf("projects: photo %s: %w", photoID, apperr.ErrNotFound)
		}
		apply := func(ph *models.ProjectPhoto) {
			if patch.Title != nil {
				ph.Title = strings.TrimSpace(*patch.Title)
			}
			if patch.Notes != nil {
				ph.Notes = *patch.Notes
			}
		}
		apply(ph)
		for i := range p.Sessions {
			for j := range p.Sessions[i].Photos {
				if p.Sessions[i].Photos[j].ID == photoID {
					apply(&p.Sessions[i].Photos[j])
				}
			}
		}
		out = *ph
		return nil
	})
	return out, err
}

// DeletePhoto removes a photo from the gallery and from any session. Timeline
// items and a cover id pointing at it are kept; both resolve as missing.
func (s *Store) DeletePhoto(ctx context.Context, projectID, photoID string) error {
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		if p.FindPhoto(photoID) == nil {
			return fmt.Errorf("projects: photo %s: %w", photoID, apperr.ErrNotFound)
		}
		byID := func(ph models.ProjectPhoto) bool { return ph.ID == photoID }
		p.Photos = slices.DeleteFunc(p.Photos, byID)
		for i := range p.Sessions {
			p.Sessions[i].Photos = slices.DeleteFunc(p.Sessions[i].Photos, byID)
			if len(p.Sessions[i].Photos) == 0 {
				p.Sessions[i].Photos = nil
			}
		}
		return nil
	})
	return err
}

// SetCoverPhoto marks photoID as the project cover. Only coverPhotoId changes.
func (s *Store) SetCoverPhoto(ctx context.Context, projectID, photoID string) (models.Project, error) {
	return s.update(ctx, projectID, func(p *models.Project) error {
		if p.FindPhoto(photoID) == nil {
			return fmt.Errorf("projects: photo %s: %w", photoID, apperr.ErrNotFound)
		}
		p.CoverPhotoID = photoID
		return nil
	})
}
