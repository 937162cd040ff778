package model

import "time"

// Listing is a market listing as imported from an MLS export. Listings
// are raw inventory; they become PropertyInputs only when screened or
// analyzed, at which point financing defaults are applied.
type Listing struct {
	ID string `json:"id"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`

	PropertyType PropertyType `json:"property_type"`

	ListPrice    float64 `json:"list_price"`
	Sqft         float64 `json:"sqft,omitempty"`
	Bedrooms     float64 `json:"bedrooms,omitempty"`
	Bathrooms    float64 `json:"bathrooms,omitempty"`
	YearBuilt    int     `json:"year_built,omitempty"`
	DaysOnMarket float64 `json:"days_on_market,omitempty"`

	ImportedAt time.Time `json:"imported_at"`
}

// ScreeningDefaults are the financing and carry assumptions applied to
// listings when no deal-specific terms are known.
type ScreeningDefaults struct {
	DownPaymentPct     float64 `yaml:"down_payment_pct" mapstructure:"down_payment_pct"`
	InterestRateAnnual float64 `yaml:"interest_rate_annual" mapstructure:"interest_rate_annual"`
	LoanTermYears      int     `yaml:"loan_term_years" mapstructure:"loan_term_years"`
	TaxesAnnual        float64 `yaml:"taxes_annual" mapstructure:"taxes_annual"`
	InsuranceAnnual    float64 `yaml:"insurance_annual" mapstructure:"insurance_annual"`
}

// DefaultScreeningDefaults returns the conventional-financing profile
// used by bulk screening.
func DefaultScreeningDefaults() ScreeningDefaults {
	return ScreeningDefaults{
		DownPaymentPct:     0.25,
		InterestRateAnnual: 0.065,
		LoanTermYears:      30,
		TaxesAnnual:        3000,
		InsuranceAnnual:    1200,
	}
}

// ToPropertyInput converts a listing into an evaluation input using the
// given financing defaults. Rent is left unset so the estimator fills it.
func (l Listing) ToPropertyInput(d ScreeningDefaults) PropertyInput {
	return PropertyInput{
		PropertyType: l.PropertyType,
		Address:      l.Address,
		City:         l.City,
		State:        l.State,
		Zipcode:      l.Zipcode,

		ListPrice:    l.ListPrice,
		Sqft:         l.Sqft,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		YearBuilt:    l.YearBuilt,
		DaysOnMarket: l.DaysOnMarket,

		DownPaymentPct:     d.DownPaymentPct,
		InterestRateAnnual: d.InterestRateAnnual,
		LoanTermYears:      d.LoanTermYears,
		TaxesAnnual:        d.TaxesAnnual,
		InsuranceAnnual:    d.InsuranceAnnual,

		Strategy: StrategyHold,
	}
}

// Deal is a persisted evaluation record.
type Deal struct {
	ID        string          `json:"id"`
	Address   string          `json:"address"`
	Zipcode   string          `json:"zipcode"`
	ListPrice float64         `json:"list_price"`
	Label     Label           `json:"label"`
	RankScore float64         `json:"rank_score"`
	Result    *DealEvaluation `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
