package models

import "sort"

// TimelineType tags what a TimelineItem points at.
type TimelineType string

const (
	TimelineSession TimelineType = "session"
	TimelinePhoto   TimelineType = "photo"
	TimelinePattern TimelineType = "pattern"
)

// TimelineItem indexes a session, photo or pattern of the same project.
// It does not own the referenced entity; the reference may dangle.
type TimelineItem struct {
	ID          string       `json:"id"`
	Type        TimelineType `json:"type"`
	CreatedAt   Timestamp    `json:"createdAt"`
	SessionID   string       `json:"sessionId,omitempty"`
	PhotoID     string       `json:"photoId,omitempty"`
	PatternID   string       `json:"patternId,omitempty"`
	Annotations []string     `json:"annotations,omitempty"`
}

// Clone returns a deep copy of it.
func (it TimelineItem) Clone() TimelineItem {
	out := it
	if it.Annotations != nil {
		out.Annotations = append([]string(nil), it.Annotations...)
	}
	return out
}

// TimelineEntry is a TimelineItem joined with the entity it references.
// NotFound is set when the reference no longer resolves.
type TimelineEntry struct {
	TimelineItem
	Session  *Session      `json:"session,omitempty"`
	Photo    *ProjectPhoto `json:"photo,omitempty"`
	Pattern  *Pattern      `json:"pattern,omitempty"`
	NotFound bool          `json:"notFound,omitempty"`
}

// SortedTimeline returns the project's timeline newest first, each item
// resolved against the project's sessions, photos and wishlist. The stored
// timeline is left untouched.
func (p *Project) SortedTimeline() []TimelineEntry {
	out := make([]TimelineEntry, 0, len(p.Timeline))
	for _, it := range p.Timeline {
		e := TimelineEntry{TimelineItem: it.Clone()}
		switch it.Type {
		case TimelineSession:
			if s := p.FindSession(it.SessionID); s != nil {
				c := s.Clone()
				e.Session = &c
			}
		case TimelinePhoto:
			if ph := p.FindPhoto(it.PhotoID); ph != nil {
				c := *ph
				e.Photo = &c
			}
		case TimelinePattern:
			if pt := p.FindPattern(it.PatternID); pt != nil {
				c := pt.Clone()
				e.Pattern = &c
			}
		}
		e.NotFound = e.Session == nil && e.Photo == nil && e.Pattern == nil
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}
