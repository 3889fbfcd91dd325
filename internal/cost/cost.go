// Package cost prices a finished piece from materials, labour and margin.
package cost

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/craftfolder/internal/apperr"
)

// Input holds the calculator fields. Weights share one unit (grams in
// metric, ounces in imperial) so only their ratio matters.
type Input struct {
	SkeinPrice   float64 `json:"skeinPrice"`
	SkeinSize    float64 `json:"skeinSize"`
	YarnUsed     float64 `json:"yarnUsed"`
	HoursWorked  float64 `json:"hoursWorked"`
	HourlyRate   float64 `json:"hourlyRate"`
	ExtraCosts   float64 `json:"extraCosts"`
	ProfitMargin float64 `json:"profitMargin"`
	Currency     string  `json:"currency,omitempty"`
}

// Validate checks the input.
func (in *Input) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.SkeinPrice, validation.Min(0.0)),
		validation.Field(&in.SkeinSize, validation.Required.Error("skein size must be greater than zero"), validation.Min(0.0)),
		validation.Field(&in.YarnUsed, validation.Min(0.0)),
		validation.Field(&in.HoursWorked, validation.Min(0.0)),
		validation.Field(&in.HourlyRate, validation.Min(0.0)),
		validation.Field(&in.ExtraCosts, validation.Min(0.0)),
		validation.Field(&in.ProfitMargin, validation.Min(0.0)),
		validation.Field(&in.Currency, validation.By(knownCurrency)),
	)
}

func knownCurrency(value interface{}) error {
	code, _ := value.(string)
	if code == "" {
		return nil
	}
	if _, ok := LookupCurrency(code); !ok {
		return validation.NewError("validation_currency", "unsupported currency")
	}
	return nil
}

// Result is the priced piece, amounts rounded to two decimals.
type Result struct {
	YarnCost     float64  `json:"yarnCost"`
	LabourCost   float64  `json:"labourCost"`
	TotalCost    float64  `json:"totalCost"`
	SellingPrice float64  `json:"sellingPrice"`
	Currency     Currency `json:"currency"`
}

// Calculate prices in. The currency defaults to DefaultCurrency.
//
//	yarn    = yarnUsed / skeinSize * skeinPrice
//	labour  = hoursWorked * hourlyRate
//	total   = yarn + labour + extraCosts
//	selling = total + total * profitMargin / 100
func Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, apperr.Invalid(err)
	}

	yarn := in.YarnUsed / in.SkeinSize * in.SkeinPrice
	labour := in.HoursWorked * in.HourlyRate
	total := yarn + labour + in.ExtraCosts
	selling := total + total*in.ProfitMargin/100

	code := in.Currency
	if code == "" {
		code = DefaultCurrency
	}
	cur, _ := LookupCurrency(code)

	return Result{
		YarnCost:     round2(yarn),
		LabourCost:   round2(labour),
		TotalCost:    round2(total),
		SellingPrice: round2(selling),
		Currency:     cur,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
