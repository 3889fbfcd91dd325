package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestLoad_Defaults(t *testing.T) {
	s := NewStore(testutil.KV(t), testutil.Logger())
	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, Defaults(), s.Get())
}

func TestUpdate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	s := NewStore(kv, testutil.Logger())

	got, err := s.Update(ctx, Patch{
		AppTheme:             ptr("pastel"),
		NotificationsEnabled: ptr(false),
		ShakeToReturn:        ptr(true),
		Units:                ptr("imperial"),
	})
	require.NoError(t, err)
	require.Equal(t, "pastel", got.AppTheme)

	raw, err := kv.Get(ctx, KeyAppTheme)
	require.NoError(t, err)
	require.Equal(t, "pastel", string(raw))

	raw, err = kv.Get(ctx, KeyShakeToReturn)
	require.NoError(t, err)
	require.Equal(t, "true", string(raw))

	reloaded := NewStore(kv, testutil.Logger())
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, got, reloaded.Get())
}

func TestUpdate_Invalid(t *testing.T) {
	s := NewStore(testutil.KV(t), testutil.Logger())
	cases := map[string]Patch{
		"theme":    {AppTheme: ptr("neon")},
		"units":    {Units: ptr("cubits")},
		"currency": {PreferredCurrency: ptr("BTC")},
		"manual":   {ManualCurrencyCode: ptr("auto")},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Update(context.Background(), p)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.Equal(t, Defaults(), s.Get())
		})
	}
}

func TestCurrencyResolution(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.KV(t), testutil.Logger())

	require.Equal(t, "USD", s.Currency("en-US"))
	require.Equal(t, "GBP", s.Currency("xx-XX"))

	_, err := s.SetCurrency(ctx, "eur")
	require.NoError(t, err)
	require.Equal(t, "EUR", s.Get().ManualCurrencyCode)
	require.Equal(t, "EUR", s.Currency("ja-JP"))

	_, err = s.SetCurrency(ctx, "manual")
	require.NoError(t, err)
	require.Equal(t, "EUR", s.Get().ManualCurrencyCode)
	require.Equal(t, "EUR", s.Currency("ja-JP"))

	_, err = s.SetCurrency(ctx, "auto")
	require.NoError(t, err)
	require.Equal(t, "JPY", s.Currency("ja-JP"))
}

func TestLoad_QuotedAndBareStrings(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	require.NoError(t, kv.Set(ctx, KeyPreferredCurrency, []byte(`"manual"`)))
	require.NoError(t, kv.Set(ctx, KeyManualCurrencyCode, []byte(`"MYR"`)))
	require.NoError(t, kv.Set(ctx, KeyAppTheme, []byte(`nature`)))

	s := NewStore(kv, testutil.Logger())
	require.NoError(t, s.Load(ctx))
	require.Equal(t, "nature", s.Get().AppTheme)
	require.Equal(t, "MYR", s.Currency("en-GB"))
}

func TestLoad_BadValue(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	require.NoError(t, kv.Set(ctx, KeyCloudSync, []byte(`maybe`)))

	s := NewStore(kv, testutil.Logger())
	require.Error(t, s.Load(ctx))
	require.False(t, s.Get().CloudSync)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	kv := testutil.KV(t)
	s := NewStore(kv, testutil.Logger())

	_, err := s.Update(ctx, Patch{AppTheme: ptr("dark"), CloudSync: ptr(true)})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))
	require.Equal(t, Defaults(), s.Get())

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}
