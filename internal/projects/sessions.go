package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
)

// SessionPatch edits the mutable fields of a saved session. Nil fields are
// left unchanged.
type SessionPatch struct {
	Notes       *string `json:"notes"`
	IsMilestone *bool   `json:"isMilestone"`
}

// AppendSession records sess on the project and prepends a matching
// session timeline item. It returns the updated project.
func (s *Store) AppendSession(ctx context.Context, projectID string, sess models.Session) (models.Project, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt == 0 {
		sess.CreatedAt = models.Now()
	}
	sess = sess.Clone()

	return s.update(ctx, projectID, func(p *models.Project) error {
		if p.FindSession(sess.ID) != nil {
			return fmt.Errorf("projects: session %s: %w", sess.ID, apperr.ErrAlreadyExists)
		}
		p.Sessions = append(p.Sessions, sess)
		item := models.TimelineItem{
			ID:        uuid.NewString(),
			Type:      models.TimelineSession,
			SessionID: sess.ID,
			CreatedAt: sess.CreatedAt,
		}
		p.Timeline = append([]models.TimelineItem{item}, p.Timeline...)
		return nil
	})
}

// UpdateSession edits notes and milestone flag of a saved session.
func (s *Store) UpdateSession(ctx context.Context, projectID, sessionID string, patch SessionPatch) (models.Session, error) {
	var out models.Session
	_, err := s.update(ctx, projectID, func(p *models.Project) error {
		sess := p.FindSession(sessionID)
		if sess == nil {
			return fmt.Errorf("projects: session %s: %w", sessionID, apperr.ErrNotFound)
		}
		if patch.Notes != nil {
			sess.Notes = *patch.Notes
		}
		if patch.IsMilestone != nil {
			sess.IsMilestone = *patch.IsMilestone
		}
		out = sess.Clone()
		return nil
	})
	return out, err
}
