// Package model defines the typed inputs and outputs of the underwriting engine.
package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Strategy describes how the investor intends to exit the deal.
type Strategy string

const (
	StrategyHold Strategy = "hold"
	StrategyFlip Strategy = "flip"
)

// ParseStrategy normalizes a raw strategy string. Empty input defaults to hold.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyHold:
		return StrategyHold, nil
	case StrategyFlip:
		return StrategyFlip, nil
	default:
		return "", eris.Errorf("model: unknown strategy %q", s)
	}
}

// PropertyType enumerates the asset classes the engine underwrites.
type PropertyType string

const (
	PropertySingleFamily     PropertyType = "single_family"
	PropertyCondoTownhome    PropertyType = "condo_townhome"
	PropertyDuplexFourplex   PropertyType = "duplex_4plex"
	PropertyApartmentUnit    PropertyType = "apartment_unit"
	PropertyApartmentComplex PropertyType = "apartment_complex"
)

// Unit is a single rentable door within a multi-unit asset.
type Unit struct {
	Bedrooms   float64 `json:"bedrooms,omitempty"`
	Bathrooms  float64 `json:"bathrooms,omitempty"`
	Sqft       float64 `json:"sqft,omitempty"`
	MarketRent float64 `json:"market_rent,omitempty"` // expected achievable monthly rent
}

// PropertyInput is the immutable per-evaluation snapshot of a listing.
// Validation and coercion of raw payloads happens at the CLI/HTTP edge;
// the engine assumes this struct is already well-formed.
type PropertyInput struct {
	PropertyType PropertyType `json:"property_type"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`

	ListPrice float64 `json:"list_price"`
	Sqft      float64 `json:"sqft,omitempty"`
	Bedrooms  float64 `json:"bedrooms,omitempty"`
	Bathrooms float64 `json:"bathrooms,omitempty"`
	YearBuilt int     `json:"year_built,omitempty"`

	// Financing terms.
	DownPaymentPct     float64 `json:"down_payment_pct"`
	InterestRateAnnual float64 `json:"interest_rate_annual"`
	LoanTermYears      int     `json:"loan_term_years"`

	// Carrying costs.
	TaxesAnnual     float64 `json:"taxes_annual"`
	InsuranceAnnual float64 `json:"insurance_annual"`
	HOAMonthly      float64 `json:"hoa_monthly,omitempty"`

	// Rehab budget for flip analysis; zero means turnkey.
	RehabBudget float64 `json:"rehab_budget,omitempty"`

	// Market signals.
	DaysOnMarket float64 `json:"days_on_market,omitempty"`

	// Multi-door assets carry per-unit rents; single-door deals use
	// EstMarketRent. Either may be zero and filled by a rent estimator.
	Units         []Unit  `json:"units,omitempty"`
	EstMarketRent float64 `json:"est_market_rent,omitempty"`

	Strategy Strategy `json:"strategy"`
}

// GrossRentMonthly returns total scheduled rent per month: the sum of
// unit rents for multi-door assets, else the single-door estimate.
func (p *PropertyInput) GrossRentMonthly() float64 {
	if len(p.Units) > 0 {
		var total float64
		for _, u := range p.Units {
			total += u.MarketRent
		}
		return total
	}
	return p.EstMarketRent
}

// MultiUnit reports whether the property carries per-unit rent data.
func (p *PropertyInput) MultiUnit() bool { return len(p.Units) > 0 }

// ShortAddress renders a one-line address for logs and table output.
func (p *PropertyInput) ShortAddress() string {
	return fmt.Sprintf("%s, %s %s %s", p.Address, p.City, p.State, p.Zipcode)
}

// UnderwritingAssumptions holds the operating-expense and screening
// rates applied to every deal. All rates are fractions in [0,1].
type UnderwritingAssumptions struct {
	VacancyRate      float64 `json:"vacancy_rate" yaml:"vacancy_rate" mapstructure:"vacancy_rate"`
	MaintenanceRate  float64 `json:"maintenance_rate" yaml:"maintenance_rate" mapstructure:"maintenance_rate"`
	PropertyMgmtRate float64 `json:"property_mgmt_rate" yaml:"property_mgmt_rate" mapstructure:"property_mgmt_rate"`
	CapexRate        float64 `json:"capex_rate" yaml:"capex_rate" mapstructure:"capex_rate"`
	ClosingCostPct   float64 `json:"closing_cost_pct" yaml:"closing_cost_pct" mapstructure:"closing_cost_pct"`
	MinDSCRGood      float64 `json:"min_dscr_good" yaml:"min_dscr_good" mapstructure:"min_dscr_good"`
}

// Validate checks that every rate is a fraction in [0,1].
func (a UnderwritingAssumptions) Validate() error {
	rates := map[string]float64{
		"vacancy_rate":       a.VacancyRate,
		"maintenance_rate":   a.MaintenanceRate,
		"property_mgmt_rate": a.PropertyMgmtRate,
		"capex_rate":         a.CapexRate,
		"closing_cost_pct":   a.ClosingCostPct,
	}
	var bad []string
	for name, r := range rates {
		if r < 0 || r > 1 {
			bad = append(bad, fmt.Sprintf("%s=%.4f", name, r))
		}
	}
	if len(bad) > 0 {
		return eris.Errorf("model: assumption rates must be in [0,1]: %s", strings.Join(bad, ", "))
	}
	if a.MinDSCRGood < 0 {
		return eris.New("model: min_dscr_good must be >= 0")
	}
	return nil
}
