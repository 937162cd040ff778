// Package quantile normalizes externally supplied valuation bands into
// monotonic p10/p50/p90 structures. This is the single point where
// missing or malformed upstream model output is absorbed; nothing here
// ever returns an error.
package quantile

import (
	"math"

	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

// Band spread applied when synthesizing a fallback around a point
// estimate: f ± 5% of |f|.
const fallbackSpread = 0.05

// RawBand is an unsanitized quantile triple from a model provider. A
// nil RawBand means the provider failed or was absent.
type RawBand struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// Sanitize coerces a raw band into a monotonic QuantileBand. A nil or
// non-finite band is replaced by a synthetic band around fallback.
// Otherwise monotonicity is enforced by clamping p50 up to p10 and p90
// up to p50.
func Sanitize(raw *RawBand, fallback float64) model.QuantileBand {
	if raw == nil || !finite(raw.P10) || !finite(raw.P50) || !finite(raw.P90) {
		if raw != nil {
			zap.L().Debug("quantile: non-finite band replaced by fallback",
				zap.Float64("fallback", fallback),
			)
		}
		return Synthetic(fallback)
	}

	b := model.QuantileBand{P10: raw.P10, P50: raw.P50, P90: raw.P90}
	if b.P50 < b.P10 {
		b.P50 = b.P10
	}
	if b.P90 < b.P50 {
		b.P90 = b.P50
	}
	return b
}

// Synthetic builds the fallback band around a point estimate. The
// spread uses the magnitude of the estimate so the band stays monotonic
// even for degenerate negative fallbacks.
func Synthetic(fallback float64) model.QuantileBand {
	if !finite(fallback) {
		fallback = 0
	}
	spread := math.Abs(fallback) * fallbackSpread
	return model.QuantileBand{
		P10: fallback - spread,
		P50: fallback,
		P90: fallback + spread,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
