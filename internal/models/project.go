// Package models defines the domain types for Craftfolder.
package models

import (
	"time"

	"github.com/starford/craftfolder/internal/counter"
)

// Timestamp is a point in time in Unix milliseconds, the unit used by the
// persisted and exported JSON.
type Timestamp int64

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// Time converts t to a time.Time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// CraftType is the kind of craft a project belongs to.
type CraftType string

const (
	CraftCrochet     CraftType = "Crochet"
	CraftCrossStitch CraftType = "Cross Stitch"
)

// CraftTypes lists every accepted craft type.
var CraftTypes = []interface{}{CraftCrochet, CraftCrossStitch}

// ProjectPhoto is a progress photo. URI points at a device- or media-local file.
type ProjectPhoto struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	CreatedAt Timestamp `json:"createdAt"`
	Title     string    `json:"title,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Session is a saved stitch-counting run. Only Notes, Photos and
// IsMilestone change after it is created.
type Session struct {
	ID          string         `json:"id"`
	CreatedAt   Timestamp      `json:"createdAt"`
	Counters    counter.Set    `json:"counters"`
	Seconds     int            `json:"seconds"`
	Notes       string         `json:"notes,omitempty"`
	Photos      []ProjectPhoto `json:"photos,omitempty"`
	IsMilestone bool           `json:"isMilestone,omitempty"`
}

// PatternPDF is a PDF attached to a wishlist pattern.
type PatternPDF struct {
	URI     string    `json:"uri"`
	Name    string    `json:"name,omitempty"`
	AddedAt Timestamp `json:"addedAt"`
}

// Pattern is an entry in a project's pattern wishlist.
type Pattern struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Link      string      `json:"link,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	ImageURI  string      `json:"imageUri,omitempty"`
	PDF       *PatternPDF `json:"pdf,omitempty"`
	CreatedAt Timestamp   `json:"createdAt,omitempty"`
}

// ProjectDefaults seeds new tracking sessions.
type ProjectDefaults struct {
	Counters  []string  `json:"counters"`
	CraftType CraftType `json:"craftType,omitempty"`
}

// Project is the aggregate root for everything recorded about one piece of work.
type Project struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	CraftType       CraftType        `json:"craftType"`
	Notes           string           `json:"notes,omitempty"`
	Photos          []ProjectPhoto   `json:"photos"`
	Sessions        []Session        `json:"sessions"`
	Timeline        []TimelineItem   `json:"timeline"`
	CoverPhotoID    string           `json:"coverPhotoId,omitempty"`
	PatternWishlist []Pattern        `json:"patternWishlist,omitempty"`
	Defaults        *ProjectDefaults `json:"defaults,omitempty"`
	CreatedAt       Timestamp        `json:"createdAt,omitempty"`
}

// Normalize replaces nil core slices with empty ones so a project always
// serialises photos, sessions and timeline as arrays.
func (p *Project) Normalize() {
	if p.Photos == nil {
		p.Photos = []ProjectPhoto{}
	}
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	if p.Timeline == nil {
		p.Timeline = []TimelineItem{}
	}
}

// DefaultCounters returns the counter names new sessions start with.
func (p *Project) DefaultCounters() []string {
	if p.Defaults == nil {
		return nil
	}
	return append([]string(nil), p.Defaults.Counters...)
}

// FindSession returns the session with id, or nil.
func (p *Project) FindSession(id string) *Session {
	for i := range p.Sessions {
		if p.Sessions[i].ID == id {
			return &p.Sessions[i]
		}
	}
	return nil
}

// FindPhoto returns the photo with id, or nil.
func (p *Project) FindPhoto(id string) *ProjectPhoto {
	for i := range p.Photos {
		if p.Photos[i].ID == id {
			return &p.Photos[i]
		}
	}
	return nil
}

// FindPattern returns the wishlist pattern with id, or nil.
func (p *Project) FindPattern(id string) *Pattern {
	for i := range p.PatternWishlist {
		if p.PatternWishlist[i].ID == id {
			return &p.PatternWishlist[i]
		}
	}
	return nil
}

// FindTimelineItem returns the timeline item with id, or nil.
func (p *Project) FindTimelineItem(id string) *TimelineItem {
	for i := range p.Timeline {
		if p.Timeline[i].ID == id {
			return &p.Timeline[i]
		}
	}
	return nil
}

// Thumbnail returns the cover photo when it still exists, otherwise the most
// recently added photo, otherwise nil.
func (p *Project) Thumbnail() *ProjectPhoto {
	if p.CoverPhotoID != "" {
		if ph := p.FindPhoto(p.CoverPhotoID); ph != nil {
			return ph
		}
	}
	if len(p.Photos) == 0 {
		return nil
	}
	return &p.Photos[len(p.Photos)-1]
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.Photos = clonePhotos(p.Photos)
	if p.Sessions != nil {
		out.Sessions = make([]Session, len(p.Sessions))
		for i, s := range p.Sessions {
			out.Sessions[i] = s.Clone()
		}
	}
	if p.Timeline != nil {
		out.Timeline = make([]TimelineItem, len(p.Timeline))
		for i, it := range p.Timeline {
			out.Timeline[i] = it.Clone()
		}
	}
	if p.PatternWishlist != nil {
		out.PatternWishlist = make([]Pattern, len(p.PatternWishlist))
		for i, pt := range p.PatternWishlist {
			out.PatternWishlist[i] = pt.Clone()
		}
	}
	if p.Defaults != nil {
		d := *p.Defaults
		d.Counters = append([]string(nil), p.Defaults.Counters...)
		out.Defaults = &d
	}
	return out
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	if s.Counters.Values != nil {
		out.Counters = s.Counters.Clone()
	}
	out.Photos = clonePhotos(s.Photos)
	return out
}

// Clone returns a deep copy of pt.
func (pt Pattern) Clone() Pattern {
	out := pt
	if pt.PDF != nil {
		pdf := *pt.PDF
		out.PDF = &pdf
	}
	return out
}

func clonePhotos(in []ProjectPhoto) []ProjectPhoto {
	if in == nil {
		return nil
	}
	out := make([]ProjectPhoto, len(in))
	copy(out, in)
	return out
}
