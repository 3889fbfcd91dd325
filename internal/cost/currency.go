package cost

import "strings"

// DefaultCurrency is used when nothing else resolves.
const DefaultCurrency = "GBP"

// Currency is a supported display currency.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Currencies lists the supported currencies.
var Currencies = []Currency{
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "CA$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
}

var localeCurrency = map[string]string{
	"en-GB": "GBP",
	"en-US": "USD",
	"de-DE": "EUR",
	"fr-FR": "EUR",
	"it-IT": "EUR",
	"es-ES": "EUR",
	"ja-JP": "JPY",
	"en-AU": "AUD",
	"en-CA": "CAD",
	"ms-MY": "MYR",
}

// CurrencyCodes returns the supported codes in table order.
func CurrencyCodes() []string {
	out := make([]string, len(Currencies))
	for i, c := range Currencies {
		out[i] = c.Code
	}
	return out
}

// LookupCurrency returns the currency with code.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencyForLocale maps a locale such as "en-GB", "en_GB" or
// "en_GB.UTF-8" to a currency code, falling back to DefaultCurrency.
func CurrencyForLocale(locale string) string {
	tag := strings.TrimSpace(locale)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	if lang, region, ok := strings.Cut(tag, "-"); ok {
		tag = strings.ToLower(lang) + "-" + strings.ToUpper(region)
	}
	if code, ok := localeCurrency[tag]; ok {
		return code
	}
	return DefaultCurrency
}
