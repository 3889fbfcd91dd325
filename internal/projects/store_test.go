package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/counter"
	"github.com/starford/craftfolder/internal/kvstore"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/testutil"
)

func newStore(t *testing.T) (*Store, kvstore.Store) {
	t.Helper()
	kv := testutil.KV(t)
	s := NewStore(kv, testutil.Logger())
	require.NoError(t, s.Load(context.Background()))
	return s, kv
}

func createProject(t *testing.T, s *Store, title string) models.Project {
	t.Helper()
	p, err := s.Save(context.Background(), ProjectInput{Title: title, CraftType: models.CraftCrochet})
	require.NoError(t, err)
	return p
}

func TestSave_CreatesProject(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.Save(context.Background(), ProjectInput{
		Title:    "  Winter Scarf ",
		Defaults: &models.ProjectDefaults{Counters: []string{"Rows", " ", "Rows", "Stitches"}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, p.ID)
	require.Equal(t, "Winter Scarf", p.Title)
	require.Equal(t, models.CraftCrochet, p.CraftType, "craft type defaults to crochet")
	require.Equal(t, []string{"Rows", "Stitches"}, p.Defaults.Counters)
	require.NotNil(t, p.Photos)
	require.NotNil(t, p.Sessions)
	require.NotNil(t, p.Timeline)
	require.Len(t, s.List(), 1)
}

func TestSave_Validation(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, ProjectInput{Title: "   "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Save(ctx, ProjectInput{Title: "Sampler", CraftType: "Knitting"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	require.Empty(t, s.List())
}

func TestSave_UpdatesExisting(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Draft")

	updated, err := s.Save(ctx, ProjectInput{ID: p.ID, Title: "Sampler", CraftType: models.CraftCrossStitch, Notes: "aida 14"})
	require.NoError(t, err)
	require.Equal(t, p.ID, updated.ID)
	require.Equal(t, "Sampler", updated.Title)
	require.Equal(t, models.CraftCrossStitch, updated.CraftType)
	require.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = s.Save(ctx, ProjectInput{ID: "missing", Title: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete_NoCascade(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := createProject(t, s, "A")
	b := createProject(t, s, "B")

	require.NoError(t, s.Delete(ctx, a.ID))
	require.ErrorIs(t, s.Delete(ctx, a.ID), apperr.ErrNotFound)

	list := s.List()
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)
}

func TestPersistence_RoundTrip(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	in := []models.Project{testutil.Project(), testutil.Project()}
	require.NoError(t, s.ReplaceAll(ctx, in))

	reloaded := NewStore(kv, testutil.Logger())
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, in, reloaded.List())
}

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`{"version":1,"data":[{"id":`)))

	s := NewStore(kv, testutil.Logger())
	err := s.Load(ctx)
	require.Error(t, err)
	require.Empty(t, s.List())
}

func TestLoad_LegacyFormat(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	legacy := `[{
		"id": "1700000000000",
		"title": "Granny Square",
		"craftType": "Crochet",
		"photos": [{"id": "1700000000100", "uri": "file:///g.jpg", "createdAt": 1700000000100}],
		"sessions": [{
			"id": "1700000000200",
			"createdAt": 1700000000200,
			"counters": {"rows": 12, "increase": 3, "decrease": 1, "seconds": 754}
		}]
	}]`
	require.NoError(t, kv.Set(ctx, StorageKey, []byte(legacy)))

	s := NewStore(kv, testutil.Logger())
	require.NoError(t, s.Load(ctx))

	p, err := s.Get("1700000000000")
	require.NoError(t, err)
	require.Len(t, p.Sessions, 1)
	sess := p.Sessions[0]
	require.Equal(t, map[string]int{"Rows": 12, "Increase": 3, "Decrease": 1}, sess.Counters.Values)
	require.Equal(t, 754, sess.Seconds)

	require.Len(t, p.Timeline, 2)
	for _, e := range p.SortedTimeline() {
		require.False(t, e.NotFound)
	}
	require.Equal(t, models.TimelineSession, p.SortedTimeline()[0].Type)
}

func TestMerge_FreshIDsOnCollision(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	existing := createProject(t, s, "Existing")

	dup := testutil.Project()
	dup.ID = existing.ID
	other := testutil.Project()

	n, err := s.Merge(ctx, []models.Project{dup, other})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	list := s.List()
	require.Len(t, list, 3)
	require.Equal(t, existing.ID, list[0].ID)
	require.NotEqual(t, existing.ID, list[1].ID)
	require.Equal(t, dup.Title, list[1].Title)
	require.Equal(t, other.ID, list[2].ID)
}

func TestOnChange(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })

	p := createProject(t, s, "A")
	_, err := s.Save(ctx, ProjectInput{ID: p.ID, Title: "B"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, p.ID))
	require.NoError(t, s.Clear(ctx))

	require.Equal(t, []Change{
		{Kind: ChangeCreated, ProjectID: p.ID},
		{Kind: ChangeUpdated, ProjectID: p.ID},
		{Kind: ChangeDeleted, ProjectID: p.ID},
		{Kind: ChangeReset},
	}, got)
}

type failingKV struct{ kvstore.Store }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSaveFailure_IsReturned(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingKV{Store: testutil.KV(t)}, testutil.Logger())
	require.NoError(t, s.Load(ctx))

	p, err := s.Save(ctx, ProjectInput{Title: "Unsaved"})
	require.ErrorIs(t, err, ErrPersist)
	require.NotEmpty(t, p.ID)

	// The mutation stays in memory; the next successful save carries it.
	require.Len(t, s.List(), 1)
}

func TestAppendSession_TimelineAndSessionMatch(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Winter Scarf")

	c := counter.New("Rows")
	c.Increment("Rows", 3)
	updated, err := s.AppendSession(ctx, p.ID, models.Session{Counters: c, Seconds: 42})
	require.NoError(t, err)

	require.Len(t, updated.Sessions, 1)
	require.Len(t, updated.Timeline, 1)
	require.Equal(t, models.TimelineSession, updated.Timeline[0].Type)
	require.Equal(t, updated.Sessions[0].ID, updated.Timeline[0].SessionID)
	require.Equal(t, 3, updated.Sessions[0].Counters.Value("Rows"))

	_, err = s.AppendSession(ctx, "missing", models.Session{Counters: c})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateSession(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Blanket")
	updated, err := s.AppendSession(ctx, p.ID, models.Session{Counters: counter.New("Rows")})
	require.NoError(t, err)
	sid := updated.Sessions[0].ID

	notes, milestone := "finished the border", true
	sess, err := s.UpdateSession(ctx, p.ID, sid, SessionPatch{Notes: &notes, IsMilestone: &milestone})
	require.NoError(t, err)
	require.Equal(t, notes, sess.Notes)
	require.True(t, sess.IsMilestone)

	_, err = s.UpdateSession(ctx, p.ID, "nope", SessionPatch{Notes: &notes})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTimeline_NewestFirstWithDanglingItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	p := testutil.Project()
	require.NoError(t, s.ReplaceAll(ctx, []models.Project{p}))
	require.NoError(t, s.DeletePhoto(ctx, p.ID, p.Photos[0].ID))

	entries, err := s.Timeline(p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, p.Photos[1].ID, entries[0].PhotoID)
	require.Equal(t, models.TimelineSession, entries[1].Type)
	require.NotNil(t, entries[1].Session)
	require.True(t, entries[2].NotFound)

	_, err = s.Timeline("missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
