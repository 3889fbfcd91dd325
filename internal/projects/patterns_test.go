package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
)

func TestPatterns_Lifecycle(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Cardigan")

	_, err := s.AddPattern(ctx, p.ID, PatternInput{Title: " "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	pt, err := s.AddPattern(ctx, p.ID, PatternInput{Title: "Raglan", Link: " https://example.com/raglan "})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/raglan", pt.Link)

	got, _ := s.Get(p.ID)
	require.Len(t, got.PatternWishlist, 1)
	require.Len(t, got.Timeline, 1)
	require.Equal(t, models.TimelinePattern, got.Timeline[0].Type)

	updated, err := s.UpdatePattern(ctx, p.ID, pt.ID, PatternInput{Title: "Raglan v2", Notes: "size M"})
	require.NoError(t, err)
	require.Equal(t, "Raglan v2", updated.Title)

	withPDF, err := s.AttachPatternPDF(ctx, p.ID, pt.ID, models.PatternPDF{URI: "file:///raglan.pdf", Name: "raglan.pdf"})
	require.NoError(t, err)
	require.NotNil(t, withPDF.PDF)
	require.NotZero(t, withPDF.PDF.AddedAt)

	_, err = s.AttachPatternPDF(ctx, p.ID, pt.ID, models.PatternPDF{})
	require.ErrorIs(t, err, apperr.ErrValidation)

	link, err := s.LinkPattern(ctx, p.ID, pt.ID)
	require.NoError(t, err)
	require.Equal(t, pt.ID, link.PatternID)

	require.NoError(t, s.DeletePattern(ctx, p.ID, pt.ID))
	got, _ = s.Get(p.ID)
	require.Empty(t, got.PatternWishlist)
	require.Len(t, got.Timeline, 2)
	for _, e := range got.SortedTimeline() {
		require.True(t, e.NotFound)
	}

	_, err = s.LinkPattern(ctx, p.ID, pt.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnnotations(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Sampler")
	_, err := s.AddPattern(ctx, p.ID, PatternInput{Title: "Alphabet"})
	require.NoError(t, err)
	got, _ := s.Get(p.ID)
	itemID := got.Timeline[0].ID

	it, err := s.AddAnnotation(ctx, p.ID, itemID, "row 12 done")
	require.NoError(t, err)
	it, err = s.AddAnnotation(ctx, p.ID, itemID, "swap colour at 20")
	require.NoError(t, err)
	require.Equal(t, []string{"row 12 done", "swap colour at 20"}, it.Annotations)

	it, err = s.AddAnnotation(ctx, p.ID, itemID, "   ")
	require.NoError(t, err)
	require.Len(t, it.Annotations, 2, "blank annotation is ignored")

	it, err = s.DeleteAnnotation(ctx, p.ID, itemID, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"swap colour at 20"}, it.Annotations)

	_, err = s.DeleteAnnotation(ctx, p.ID, itemID, 5)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	ph, err := s.AddPhoto(ctx, p.ID, PhotoInput{URI: "file:///p.jpg"})
	require.NoError(t, err)
	got, _ = s.Get(p.ID)
	var photoItem string
	for _, ti := range got.Timeline {
		if ti.PhotoID == ph.ID {
			photoItem = ti.ID
		}
	}
	_, err = s.AddAnnotation(ctx, p.ID, photoItem, "nope")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
