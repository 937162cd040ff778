// Package rentest provides the fallback rent estimator used when a
// listing arrives without scheduled rents. A trained model provider, if
// wired in, always takes precedence; this heuristic keeps the pipeline
// total in its absence.
package rentest

import (
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

// Heuristic base rates in dollars per month.
const (
	baseRent    = 500.0
	perBedroom  = 400.0
	perBathroom = 250.0
	perSqft     = 1.0
)

// typeAdjustments scales the heuristic by asset class; dense product
// rents slightly below detached.
var typeAdjustments = map[model.PropertyType]float64{
	model.PropertySingleFamily:     1.00,
	model.PropertyCondoTownhome:    0.95,
	model.PropertyDuplexFourplex:   0.92,
	model.PropertyApartmentUnit:    0.90,
	model.PropertyApartmentComplex: 0.90,
}

// Estimator produces unit-level rent estimates from listing attributes.
type Estimator struct{}

// NewEstimator creates the heuristic estimator.
func NewEstimator() *Estimator { return &Estimator{} }

// UnitRent estimates achievable monthly rent for one door.
func (e *Estimator) UnitRent(bedrooms, bathrooms, sqft float64, propertyType model.PropertyType) float64 {
	adj, ok := typeAdjustments[propertyType]
	if !ok {
		adj = 1.0
	}
	rent := (baseRent + perBedroom*bedrooms + perBathroom*bathrooms + perSqft*sqft) * adj
	if rent < 0 {
		return 0
	}
	return rent
}

// FillMissingRents populates absent rents in place: per-unit rents for
// multi-door assets, the property-level estimate for single doors.
// Returns the number of rents filled.
func (e *Estimator) FillMissingRents(prop *model.PropertyInput) int {
	filled := 0

	if prop.MultiUnit() {
		for i := range prop.Units {
			u := &prop.Units[i]
			if u.MarketRent > 0 {
				continue
			}
			u.MarketRent = e.UnitRent(u.Bedrooms, u.Bathrooms, u.Sqft, prop.PropertyType)
			filled++
		}
	} else if prop.EstMarketRent <= 0 {
		prop.EstMarketRent = e.UnitRent(prop.Bedrooms, prop.Bathrooms, prop.Sqft, prop.PropertyType)
		filled++
	}

	if filled > 0 {
		zap.L().Debug("rentest: filled missing rents",
			zap.String("address", prop.ShortAddress()),
			zap.Int("filled", filled),
		)
	}
	return filled
}
