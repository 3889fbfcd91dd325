package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testutil.KV(t), testutil.Logger())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestAdd_BlankNameRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, ItemInput{Name: "Merino", Type: models.ItemYarn, Stock: 1})
	require.NoError(t, err)

	_, err = s.Add(ctx, ItemInput{Name: "   ", Type: models.ItemYarn, Stock: 1})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Contains(t, err.Error(), "please enter a name")

	all, err := s.List(FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestAdd_Defaults(t *testing.T) {
	s := newStore(t)

	it, err := s.Add(context.Background(), ItemInput{Name: " Pearl Cotton ", Colour: "310"})
	require.NoError(t, err)
	require.NotEmpty(t, it.ID)
	require.Equal(t, "Pearl Cotton", it.Name)
	require.Equal(t, models.ItemYarn, it.Type)
	require.Equal(t, 1, it.Stock)

	_, err = s.Add(context.Background(), ItemInput{Name: "Bad", Type: "Fabric"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = s.Add(context.Background(), ItemInput{Name: "Bad", Stock: -2})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestList_Filter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, _ = s.Add(ctx, ItemInput{Name: "Merino", Type: models.ItemYarn})
	_, _ = s.Add(ctx, ItemInput{Name: "Stranded", Type: models.ItemThread})
	_, _ = s.Add(ctx, ItemInput{Name: "Alpaca", Type: models.ItemYarn})

	yarn, err := s.List(FilterYarn)
	require.NoError(t, err)
	require.Len(t, yarn, 2)

	thread, err := s.List(FilterThread)
	require.NoError(t, err)
	require.Len(t, thread, 1)

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = s.List("Fabric")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateRemove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	it, _ := s.Add(ctx, ItemInput{Name: "Merino", Type: models.ItemYarn, Stock: 2})

	updated, err := s.Update(ctx, it.ID, ItemInput{Name: "Merino DK", Type: models.ItemYarn, Stock: 0, Weight: "DK"})
	require.NoError(t, err)
	require.Equal(t, 0, updated.Stock, "update keeps an explicit zero stock")
	require.Equal(t, "DK", updated.Weight)

	_, err = s.Update(ctx, "missing", ItemInput{Name: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.Remove(ctx, it.ID))
	require.ErrorIs(t, s.Remove(ctx, it.ID), apperr.ErrNotFound)
	_, err = s.Get(it.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	s := NewStore(kv, testutil.Logger())
	require.NoError(t, s.Load(ctx))

	var want []models.CollectionItem
	for i := 0; i < 5; i++ {
		fx := testutil.CollectionItem()
		it, err := s.Add(ctx, ItemInput{
			Name: fx.Name, Type: fx.Type, Brand: fx.Brand, Colour: fx.Colour,
			Material: fx.Material, Stock: fx.Stock,
		})
		require.NoError(t, err)
		want = append(want, it)
	}

	reloaded := NewStore(kv, testutil.Logger())
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.List(FilterAll)
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, reloaded.Clear(ctx))
	got, _ = reloaded.List(FilterAll)
	require.Empty(t, got)
}
