// Package underwrite orchestrates a full deal evaluation: rent filling,
// quantile sanitization, scenario construction, risk-adjusted scoring,
// rules, pricing, and guardrails. The engine is synchronous and
// stateless; everything it needs arrives through explicit inputs and
// injected providers.
package underwrite

import (
	"context"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/quantile"
)

// QuantileProvider predicts a valuation band (ARV or rent) for a
// property. Implementations may call external models; a nil result or
// an error is absorbed by the sanitizer's fallback path, never
// surfaced from the engine.
type QuantileProvider interface {
	// Predict returns a raw band, or nil when the model is unavailable.
	Predict(ctx context.Context, prop *model.PropertyInput) (*quantile.RawBand, error)
	// Version identifies the model for evaluation transparency.
	Version() string
}

// FlipFeatures are the classifier inputs derived from a scored deal.
type FlipFeatures struct {
	DSCR                  float64 `json:"dscr"`
	CashOnCashReturn      float64 `json:"cash_on_cash_return"`
	BreakevenOccupancyPct float64 `json:"breakeven_occupancy_pct"`
	Price                 float64 `json:"price"`
	Sqft                  float64 `json:"sqft"`
	DaysOnMarket          float64 `json:"days_on_market"`
}

// FlipClassifier predicts the probability in [0,1] that a deal is a
// good flip. Absence or failure degrades the flip component to zero
// influence.
type FlipClassifier interface {
	PredictProba(ctx context.Context, features FlipFeatures) (float64, error)
	Version() string
}

// fallbackBandSpread is the relative spread of the built-in providers.
const fallbackBandSpread = 0.10

// ListPriceARVProvider is the built-in ARV provider: a +/-10% band
// around list price. It stands in until a trained quantile model is
// wired through the port.
type ListPriceARVProvider struct{}

func (ListPriceARVProvider) Predict(_ context.Context, prop *model.PropertyInput) (*quantile.RawBand, error) {
	base := prop.ListPrice
	if base <= 0 {
		return nil, nil
	}
	return &quantile.RawBand{
		P10: base * (1 - fallbackBandSpread),
		P50: base,
		P90: base * (1 + fallbackBandSpread),
	}, nil
}

func (ListPriceARVProvider) Version() string { return "arv-listprice-band/v1" }

// ScheduledRentProvider is the built-in rent provider: a +/-10% band
// around the property's scheduled gross rent.
type ScheduledRentProvider struct{}

func (ScheduledRentProvider) Predict(_ context.Context, prop *model.PropertyInput) (*quantile.RawBand, error) {
	base := prop.GrossRentMonthly()
	if base <= 0 {
		return nil, nil
	}
	return &quantile.RawBand{
		P10: base * (1 - fallbackBandSpread),
		P50: base,
		P90: base * (1 + fallbackBandSpread),
	}, nil
}

func (ScheduledRentProvider) Version() string { return "rent-scheduled-band/v1" }
