package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"hold", StrategyHold},
		{"flip", StrategyFlip},
		{"", StrategyHold},
		{"  Hold ", StrategyHold},
		{"FLIP", StrategyFlip},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStrategy("wholesale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wholesale")
}

func TestGrossRentMonthly(t *testing.T) {
	single := PropertyInput{EstMarketRent: 2_200}
	assert.Equal(t, 2_200.0, single.GrossRentMonthly())
	assert.False(t, single.MultiUnit())

	multi := PropertyInput{
		EstMarketRent: 2_200, // ignored when units exist
		Units: []Unit{
			{MarketRent: 950},
			{MarketRent: 1_050},
		},
	}
	assert.Equal(t, 2_000.0, multi.GrossRentMonthly())
	assert.True(t, multi.MultiUnit())
}

func TestCoversDebt(t *testing.T) {
	assert.True(t, FinancialMetrics{DSCR: 1.30}.CoversDebt(1.25))
	assert.False(t, FinancialMetrics{DSCR: 1.10}.CoversDebt(1.25))
	// All-cash deals trivially cover.
	assert.True(t, FinancialMetrics{NoDebt: true}.CoversDebt(1.25))
}

func TestAssumptionsValidate(t *testing.T) {
	good := UnderwritingAssumptions{
		VacancyRate:      0.05,
		MaintenanceRate:  0.08,
		PropertyMgmtRate: 0.10,
		CapexRate:        0.05,
		ClosingCostPct:   0.03,
		MinDSCRGood:      1.25,
	}
	require.NoError(t, good.Validate())

	bad := good
	bad.VacancyRate = 1.2
	require.Error(t, bad.Validate())

	bad = good
	bad.CapexRate = -0.01
	require.Error(t, bad.Validate())

	bad = good
	bad.MinDSCRGood = -1
	require.Error(t, bad.Validate())
}

func TestListingToPropertyInput(t *testing.T) {
	l := Listing{
		Address:      "123 Main St",
		City:         "Springfield",
		State:        "OH",
		Zipcode:      "45501",
		PropertyType: PropertySingleFamily,
		ListPrice:    150_000,
		Sqft:         1_400,
		Bedrooms:     3,
		Bathrooms:    2,
		DaysOnMarket: 12,
	}

	prop := l.ToPropertyInput(DefaultScreeningDefaults())
	assert.Equal(t, "123 Main St", prop.Address)
	assert.Equal(t, 150_000.0, prop.ListPrice)
	assert.InDelta(t, 0.25, prop.DownPaymentPct, 1e-9)
	assert.InDelta(t, 0.065, prop.InterestRateAnnual, 1e-9)
	assert.Equal(t, 30, prop.LoanTermYears)
	assert.Equal(t, StrategyHold, prop.Strategy)
	// Rent stays unset so the estimator can fill it.
	assert.Zero(t, prop.EstMarketRent)
}
