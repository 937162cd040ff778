package main

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/haven-labs/haven-cli/internal/model"
)

// propertyPayload is the wire form of an analyze request. Percent
// fields accept "25%", "0.25", or 25 so spreadsheet exports paste in
// cleanly; coercion happens here, never inside the engine.
type propertyPayload struct {
	PropertyType string `json:"property_type"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`

	ListPrice float64 `json:"list_price"`
	Sqft      float64 `json:"sqft"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	YearBuilt int     `json:"year_built"`

	DownPaymentPct     json.RawMessage `json:"down_payment_pct"`
	InterestRateAnnual json.RawMessage `json:"interest_rate_annual"`
	LoanTermYears      int             `json:"loan_term_years"`

	TaxesAnnual     float64 `json:"taxes_annual"`
	InsuranceAnnual float64 `json:"insurance_annual"`
	HOAMonthly      float64 `json:"hoa_monthly"`

	RehabBudget  float64 `json:"rehab_budget"`
	DaysOnMarket float64 `json:"days_on_market"`

	Units         []model.Unit `json:"units"`
	EstMarketRent float64      `json:"est_market_rent"`

	Strategy string `json:"strategy"`
}

// toPropertyInput validates and converts the payload.
func (p propertyPayload) toPropertyInput() (model.PropertyInput, error) {
	var prop model.PropertyInput

	if p.ListPrice <= 0 {
		return prop, eris.New("list_price must be positive")
	}

	strategy, err := model.ParseStrategy(p.Strategy)
	if err != nil {
		return prop, err
	}

	down, err := parsePercent(p.DownPaymentPct, 0.25)
	if err != nil {
		return prop, eris.Wrap(err, "down_payment_pct")
	}
	rate, err := parsePercent(p.InterestRateAnnual, 0.065)
	if err != nil {
		return prop, eris.Wrap(err, "interest_rate_annual")
	}

	termYears := p.LoanTermYears
	if termYears == 0 {
		termYears = 30
	}
	if termYears < 0 {
		return prop, eris.New("loan_term_years must be >= 0")
	}

	propType := model.PropertyType(p.PropertyType)
	if propType == "" {
		propType = model.PropertySingleFamily
	}

	return model.PropertyInput{
		PropertyType: propType,
		Address:      strings.TrimSpace(p.Address),
		City:         strings.TrimSpace(p.City),
		State:        strings.TrimSpace(p.State),
		Zipcode:      strings.TrimSpace(p.Zipcode),

		ListPrice: p.ListPrice,
		Sqft:      p.Sqft,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		YearBuilt: p.YearBuilt,

		DownPaymentPct:     down,
		InterestRateAnnual: rate,
		LoanTermYears:      termYears,

		TaxesAnnual:     p.TaxesAnnual,
		InsuranceAnnual: p.InsuranceAnnual,
		HOAMonthly:      p.HOAMonthly,

		RehabBudget:  p.RehabBudget,
		DaysOnMarket: p.DaysOnMarket,

		Units:         p.Units,
		EstMarketRent: p.EstMarketRent,

		Strategy: strategy,
	}, nil
}

// parsePercent coerces a JSON number or string into a fraction.
// "25%" and "25" mean 25 percent; "0.25" and 0.25 mean the same.
// Absent values take the default.
func parsePercent(raw json.RawMessage, def float64) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Errorf("invalid percent %q", s)
		}
		return normalizePercent(f)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, eris.Errorf("invalid percent %s", string(raw))
	}
	return normalizePercent(f)
}

// normalizePercent maps values above 1 from percent to fraction.
func normalizePercent(f float64) (float64, error) {
	if f < 0 {
		return 0, eris.Errorf("percent must be >= 0, got %v", f)
	}
	if f > 1 {
		f = f / 100
	}
	if f > 1 {
		return 0, eris.Errorf("percent out of range: %v", f)
	}
	return f, nil
}
