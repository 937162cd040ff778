package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haven-labs/haven-cli/internal/model"
)

func flipProp() *model.PropertyInput {
	return &model.PropertyInput{
		PropertyType:    model.PropertySingleFamily,
		Address:         "456 Oak Ave",
		ListPrice:       150_000,
		Sqft:            1_400,
		TaxesAnnual:     3_000,
		InsuranceAnnual: 1_200,
		RehabBudget:     30_000,
		Strategy:        model.StrategyFlip,
	}
}

func TestSummarize_FlipEconomics(t *testing.T) {
	prop := flipProp()
	arv := model.QuantileBand{P10: 210_000, P50: 230_000, P90: 250_000}
	fin := model.FinancialMetrics{MortgageMonthly: 700}
	a := DefaultFlipAssumptions()

	s := Summarize(prop, arv, fin, a)

	assert.Equal(t, 150_000.0, s.AskPrice)

	// rehab = 30000 * 1.10 = 33000
	// carry = 250 + 100 + 700 = 1050/mo, 6300 over six months
	// p50: net = 230000 - 16100 - 33000 - 6300 - 4600 = 170000; profit = 20000
	assert.InDelta(t, 20_000, s.ProfitP50, 1)
	// mao p50 = net - 25000 desired profit = 145000
	assert.InDelta(t, 145_000, s.MAOP50, 1)

	// Quantile ordering carries through.
	assert.Less(t, s.ProfitP10, s.ProfitP50)
	assert.Less(t, s.ProfitP50, s.ProfitP90)
	assert.Less(t, s.MAOP10, s.MAOP50)
}

func TestSummarize_FairValueSqftHeuristic(t *testing.T) {
	prop := flipProp()
	s := Summarize(prop, model.QuantileBand{}, model.FinancialMetrics{}, DefaultFlipAssumptions())

	assert.InDelta(t, 280_000, s.FairValueEstimate, 0.01) // 1400 sqft * $200
	assert.InDelta(t, -130_000, s.PriceDelta, 0.01)
	assert.InDelta(t, -130_000.0/280_000.0, s.PriceDeltaPct, 1e-9)
}

func TestSummarize_FairValueIncomeApproach(t *testing.T) {
	prop := flipProp()
	prop.PropertyType = model.PropertyApartmentComplex
	fin := model.FinancialMetrics{NOIAnnual: 84_000}

	s := Summarize(prop, model.QuantileBand{}, fin, DefaultFlipAssumptions())
	assert.InDelta(t, 1_200_000, s.FairValueEstimate, 0.01) // 84k / 0.07
}

func TestSummarize_NoSqftNoFairValue(t *testing.T) {
	prop := flipProp()
	prop.Sqft = 0

	s := Summarize(prop, model.QuantileBand{}, model.FinancialMetrics{}, DefaultFlipAssumptions())
	assert.Zero(t, s.FairValueEstimate)
	assert.Zero(t, s.PriceDeltaPct)
}

func TestDefaultFlipAssumptions(t *testing.T) {
	a := DefaultFlipAssumptions()
	assert.Equal(t, 0.07, a.SellingCostRate)
	assert.Equal(t, 25_000.0, a.DesiredProfit)
	assert.Equal(t, 200.0, a.PricePerSqft)
}
