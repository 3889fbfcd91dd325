package cost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/craftfolder/internal/apperr"
)

func TestCalculate(t *testing.T) {
	res, err := Calculate(Input{
		SkeinPrice:   5,
		SkeinSize:    100,
		YarnUsed:     250,
		HoursWorked:  10,
		HourlyRate:   8,
		ExtraCosts:   2,
		ProfitMargin: 20,
	})
	require.NoError(t, err)
	require.Equal(t, 12.5, res.YarnCost)
	require.Equal(t, 80.0, res.LabourCost)
	require.Equal(t, 94.5, res.TotalCost)
	require.Equal(t, 113.4, res.SellingPrice)
	require.Equal(t, "GBP", res.Currency.Code)
}

func TestCalculate_Rounding(t *testing.T) {
	res, err := Calculate(Input{SkeinPrice: 3.99, SkeinSize: 50, YarnUsed: 33, Currency: "jpy"})
	require.NoError(t, err)
	require.Equal(t, 2.63, res.TotalCost)
	require.Equal(t, 2.63, res.SellingPrice)
	require.Equal(t, "¥", res.Currency.Symbol)
}

func TestCalculate_Validation(t *testing.T) {
	cases := map[string]Input{
		"zero skein size":  {SkeinPrice: 5, YarnUsed: 10},
		"negative hours":   {SkeinSize: 50, HoursWorked: -1},
		"negative margin":  {SkeinSize: 50, ProfitMargin: -5},
		"unknown currency": {SkeinSize: 50, Currency: "XYZ"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(in)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCurrencyForLocale(t *testing.T) {
	cases := map[string]string{
		"en-GB":       "GBP",
		"en_US":       "USD",
		"de_DE.UTF-8": "EUR",
		"ja-jp":       "JPY",
		"ms-MY":       "MYR",
		"pt-BR":       "GBP",
		"":            "GBP",
	}
	for locale, want := range cases {
		require.Equal(t, want, CurrencyForLocale(locale), locale)
	}
}

func TestLookupCurrency(t *testing.T) {
	c, ok := LookupCurrency(" cad ")
	require.True(t, ok)
	require.Equal(t, "CA$", c.Symbol)

	_, ok = LookupCurrency("BTC")
	require.False(t, ok)
	require.Len(t, CurrencyCodes(), 7)
}
