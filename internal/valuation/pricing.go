// Package valuation prices a deal against its ARV band: per-quantile
// flip profit, maximum allowable offer, and a fair-value estimate for
// the hold side.
package valuation

import (
	"github.com/haven-labs/haven-cli/internal/model"
)

// FlipAssumptions parameterize the flip cost model.
type FlipAssumptions struct {
	SellingCostRate  float64 `yaml:"selling_cost_rate" mapstructure:"selling_cost_rate"`   // agent + closing on exit, % of ARV
	BuyCostRate      float64 `yaml:"buy_cost_rate" mapstructure:"buy_cost_rate"`           // acquisition friction, % of ARV
	DesiredProfit    float64 `yaml:"desired_profit" mapstructure:"desired_profit"`         // target margin in dollars
	HoldMonths       float64 `yaml:"hold_months" mapstructure:"hold_months"`               // expected months to resale
	RehabContingency float64 `yaml:"rehab_contingency" mapstructure:"rehab_contingency"`   // bump on rehab estimates
	PricePerSqft     float64 `yaml:"price_per_sqft" mapstructure:"price_per_sqft"`         // residential fair-value heuristic
	MarketCapRate    float64 `yaml:"market_cap_rate" mapstructure:"market_cap_rate"`       // income-approach cap rate
}

// DefaultFlipAssumptions returns the standard cost model.
func DefaultFlipAssumptions() FlipAssumptions {
	return FlipAssumptions{
		SellingCostRate:  0.07,
		BuyCostRate:      0.02,
		DesiredProfit:    25_000,
		HoldMonths:       6,
		RehabContingency: 0.10,
		PricePerSqft:     200,
		MarketCapRate:    0.07,
	}
}

// Summarize prices the deal at each ARV quantile and estimates fair
// value from the base-scenario NOI. Pure; guarded divisions only.
func Summarize(prop *model.PropertyInput, arv model.QuantileBand, fin model.FinancialMetrics, a FlipAssumptions) model.PricingSummary {
	rehab := prop.RehabBudget * (1 + a.RehabContingency)
	holdCosts := monthlyCarry(prop, fin) * a.HoldMonths

	s := model.PricingSummary{AskPrice: prop.ListPrice}

	s.ProfitP10, s.MAOP10 = priceAtQuantile(arv.P10, prop.ListPrice, rehab, holdCosts, a)
	s.ProfitP50, s.MAOP50 = priceAtQuantile(arv.P50, prop.ListPrice, rehab, holdCosts, a)
	s.ProfitP90, s.MAOP90 = priceAtQuantile(arv.P90, prop.ListPrice, rehab, holdCosts, a)

	s.FairValueEstimate = fairValue(prop, fin, a)
	s.PriceDelta = s.AskPrice - s.FairValueEstimate
	if s.FairValueEstimate > 0 {
		s.PriceDeltaPct = s.PriceDelta / s.FairValueEstimate
	}

	return s
}

// priceAtQuantile computes net flip profit at the asking price and the
// maximum allowable offer that still preserves the desired margin:
//
//	MAO = ARV*(1 - sellingCost) - rehab - holdCosts - desiredProfit - ARV*buyCost
func priceAtQuantile(arv, offerPrice, rehab, holdCosts float64, a FlipAssumptions) (profit, mao float64) {
	sellingCosts := arv * a.SellingCostRate
	buyCosts := arv * a.BuyCostRate
	net := arv - sellingCosts - rehab - holdCosts - buyCosts

	profit = net - offerPrice
	mao = arv*(1-a.SellingCostRate) - rehab - holdCosts - a.DesiredProfit - arv*a.BuyCostRate
	return profit, mao
}

// monthlyCarry is the out-of-pocket monthly cost while the asset is
// held vacant for rehab: taxes, insurance, HOA, and debt service.
func monthlyCarry(prop *model.PropertyInput, fin model.FinancialMetrics) float64 {
	return prop.TaxesAnnual/12 + prop.InsuranceAnnual/12 + prop.HOAMonthly + fin.MortgageMonthly
}

// fairValue uses the income approach for complexes and a price-per-sqft
// heuristic for everything else.
func fairValue(prop *model.PropertyInput, fin model.FinancialMetrics, a FlipAssumptions) float64 {
	if prop.PropertyType == model.PropertyApartmentComplex {
		if a.MarketCapRate <= 0 {
			return 0
		}
		return fin.NOIAnnual / a.MarketCapRate
	}
	if prop.Sqft <= 0 {
		return 0
	}
	return prop.Sqft * a.PricePerSqft
}
