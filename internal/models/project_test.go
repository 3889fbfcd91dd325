package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/counter"
)

func sampleProject() Project {
	return Project{
		ID:        "p1",
		Title:     "Winter Scarf",
		CraftType: CraftCrochet,
		Photos: []ProjectPhoto{
			{ID: "ph1", URI: "file:///a.jpg", CreatedAt: 100},
			{ID: "ph2", URI: "file:///b.jpg", CreatedAt: 300},
		},
		Sessions: []Session{
			{ID: "s1", CreatedAt: 200, Counters: counter.New("Rows"), Seconds: 60},
		},
		PatternWishlist: []Pattern{{ID: "pt1", Title: "Cable knit"}},
		Timeline: []TimelineItem{
			{ID: "t1", Type: TimelinePhoto, PhotoID: "ph1", CreatedAt: 100},
			{ID: "t3", Type: TimelinePhoto, PhotoID: "ph2", CreatedAt: 300},
			{ID: "t2", Type: TimelineSession, SessionID: "s1", CreatedAt: 200},
			{ID: "t4", Type: TimelinePattern, PatternID: "pt1", CreatedAt: 400},
		},
	}
}

func TestSortedTimeline_NewestFirst(t *testing.T) {
	p := sampleProject()

	entries := p.SortedTimeline()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		require.False(t, e.NotFound, "entry %s should resolve", e.ID)
	}
	require.Equal(t, []string{"t4", "t3", "t2", "t1"}, ids)
	require.Equal(t, "t1", p.Timeline[0].ID, "stored timeline order is untouched")
	require.Equal(t, "Cable knit", entries[0].Pattern.Title)
	require.Equal(t, 60, entries[2].Session.Seconds)
}

func TestSortedTimeline_DanglingReference(t *testing.T) {
	p := sampleProject()
	p.Photos = p.Photos[1:]

	var missing []string
	for _, e := range p.SortedTimeline() {
		if e.NotFound {
			missing = append(missing, e.ID)
		}
	}
	require.Equal(t, []string{"t1"}, missing)
}

func TestThumbnail(t *testing.T) {
	p := sampleProject()
	require.Equal(t, "ph2", p.Thumbnail().ID, "last photo without a cover")

	p.CoverPhotoID = "ph1"
	require.Equal(t, "ph1", p.Thumbnail().ID)

	p.CoverPhotoID = "gone"
	require.Equal(t, "ph2", p.Thumbnail().ID, "stale cover falls back")

	p.Photos = nil
	require.Nil(t, p.Thumbnail())
}

func TestClone_Deep(t *testing.T) {
	p := sampleProject()
	p.Defaults = &ProjectDefaults{Counters: []string{"Rows"}}
	c := p.Clone()

	c.Photos[0].Title = "changed"
	c.Sessions[0].Counters.Increment("Rows", 5)
	c.Timeline[0].Annotations = append(c.Timeline[0].Annotations, "note")
	c.PatternWishlist[0].Title = "changed"
	c.Defaults.Counters[0] = "changed"

	require.Empty(t, p.Photos[0].Title)
	require.Equal(t, 0, p.Sessions[0].Counters.Value("Rows"))
	require.Empty(t, p.Timeline[0].Annotations)
	require.Equal(t, "Cable knit", p.PatternWishlist[0].Title)
	require.Equal(t, "Rows", p.Defaults.Counters[0])
}

func TestNormalize(t *testing.T) {
	var p Project
	p.Normalize()
	require.NotNil(t, p.Photos)
	require.NotNil(t, p.Sessions)
	require.NotNil(t, p.Timeline)
}
