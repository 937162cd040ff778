package quantile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_NilBandUsesFallback(t *testing.T) {
	b := Sanitize(nil, 200_000)

	assert.InDelta(t, 190_000, b.P10, 0.01)
	assert.InDelta(t, 200_000, b.P50, 0.01)
	assert.InDelta(t, 210_000, b.P90, 0.01)
}

func TestSanitize_NonFiniteValues(t *testing.T) {
	tests := []struct {
		name string
		raw  RawBand
	}{
		{"nan p10", RawBand{P10: math.NaN(), P50: 200_000, P90: 210_000}},
		{"nan p50", RawBand{P10: 190_000, P50: math.NaN(), P90: 210_000}},
		{"positive inf", RawBand{P10: 190_000, P50: 200_000, P90: math.Inf(1)}},
		{"negative inf", RawBand{P10: math.Inf(-1), P50: 200_000, P90: 210_000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Sanitize(&tt.raw, 100_000)
			assert.InDelta(t, 95_000, b.P10, 0.01)
			assert.InDelta(t, 100_000, b.P50, 0.01)
			assert.InDelta(t, 105_000, b.P90, 0.01)
		})
	}
}

func TestSanitize_EnforcesMonotonicity(t *testing.T) {
	// Fully inverted band collapses upward.
	b := Sanitize(&RawBand{P10: 220, P50: 200, P90: 180}, 0)
	assert.Equal(t, 220.0, b.P10)
	assert.Equal(t, 220.0, b.P50)
	assert.Equal(t, 220.0, b.P90)

	// Only the tail inverted.
	b = Sanitize(&RawBand{P10: 100, P50: 150, P90: 120}, 0)
	assert.Equal(t, 100.0, b.P10)
	assert.Equal(t, 150.0, b.P50)
	assert.Equal(t, 150.0, b.P90)
}

func TestSanitize_WellFormedBandPassesThrough(t *testing.T) {
	b := Sanitize(&RawBand{P10: 180_000, P50: 190_000, P90: 200_000}, 0)
	assert.Equal(t, 180_000.0, b.P10)
	assert.Equal(t, 190_000.0, b.P50)
	assert.Equal(t, 200_000.0, b.P90)
}

func TestSynthetic_NegativeFallbackStaysMonotonic(t *testing.T) {
	b := Synthetic(-100)
	assert.True(t, b.P10 <= b.P50 && b.P50 <= b.P90)
	assert.InDelta(t, -105, b.P10, 0.01)
	assert.InDelta(t, -95, b.P90, 0.01)
}

func TestSynthetic_NonFiniteFallbackCollapsesToZero(t *testing.T) {
	b := Synthetic(math.NaN())
	assert.Zero(t, b.P10)
	assert.Zero(t, b.P50)
	assert.Zero(t, b.P90)
}

func TestRelativeSpread(t *testing.T) {
	b := Sanitize(&RawBand{P10: 180_000, P50: 190_000, P90: 200_000}, 0)
	assert.InDelta(t, 20_000.0/190_000.0, b.RelativeSpread(), 1e-9)

	// Denominator floors at 1 so degenerate medians stay defined.
	small := Sanitize(&RawBand{P10: 0, P50: 0.5, P90: 1}, 0)
	assert.InDelta(t, 1.0, small.RelativeSpread(), 1e-9)
}
