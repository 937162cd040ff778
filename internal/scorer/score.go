package scorer

import (
	"math"

	"github.com/haven-labs/haven-cli/internal/model"
)

// Component bounds for the additive heuristic. Each term is clamped
// independently before summation, then the total is clamped to
// [-100, 100].
const (
	cocComponentBound = 40.0

	dscrNonPositivePenalty = -40.0
	dscrBelowOnePenalty    = -30.0
	dscrComponentFloor     = -30.0
	dscrComponentCeil      = 25.0

	breakevenSafeOccupancy = 0.90
	breakevenSlope         = 100.0 // points per unit of occupancy above safe
	breakevenFloor         = -20.0

	domGraceDays      = 45.0
	domSlope          = 0.05 // points per day beyond grace
	domCap            = 9.0
	domFlipMultiplier = 1.5

	downsideSafeRatio    = 0.90
	downsideSlope        = 100.0
	downsideMaxPenalty   = 40.0
	weakRentFloorPenalty = -15.0

	flipSwing       = 40.0 // full-range swing of the flip component when flipping
	flipHoldDamping = 0.4

	rankScoreBound = 100.0

	// Negative cashflow or sub-1.0 coverage can never rank above this.
	hardOverrideCeiling = -25.0
)

// ScoreInput carries everything the ranking heuristic looks at. Bands
// and flip probability are optional; absence degrades their components
// to zero influence.
type ScoreInput struct {
	Finance model.FinancialMetrics

	ARVBand  *model.QuantileBand
	RentBand *model.QuantileBand

	DaysOnMarket    float64
	Strategy        model.Strategy
	FlipProbability *float64 // in [0,1] when present
}

// Score maps one scenario's finance output plus uncertainty and market
// signals into a bounded rank score and a provisional label. The
// function is pure and total: no input combination errors.
func Score(in ScoreInput) model.ScoreResult {
	fin := in.Finance

	components := map[string]float64{
		"coc":       cocComponent(fin.CashOnCashReturn),
		"dscr":      dscrComponent(fin),
		"breakeven": breakevenComponent(fin.BreakevenOccupancyPct),
		"dom":       domComponent(in.DaysOnMarket, in.Strategy),
		"downside":  downsideComponent(in.ARVBand, in.RentBand, fin.CashflowMonthlyAfterDebt),
		"flip":      flipComponent(in.FlipProbability, in.Strategy),
	}

	var total float64
	for _, c := range components {
		total += c
	}
	rank := clamp(total, -rankScoreBound, rankScoreBound)

	// Hard overrides: a deal that loses money every month or fails to
	// cover its debt can never rank as acceptable, whatever the sum says.
	if fin.CashflowMonthlyAfterDebt < 0 || (!fin.NoDebt && fin.DSCR < 1.0) {
		rank = math.Min(rank, hardOverrideCeiling)
	}

	label, reason := labelForRank(rank)

	return model.ScoreResult{
		RankScore:  rank,
		Label:      label,
		Suggestion: suggestionFor(label, fin),
		Reason:     reason,
		Components: components,
		Strategy:   in.Strategy,
	}
}

// labelForRank maps the (possibly overridden) score onto label bands.
func labelForRank(rank float64) (model.Label, string) {
	switch {
	case rank >= 40:
		return model.LabelBuy, "Strong cashflow, healthy coverage, and resilient downside."
	case rank >= 15:
		return model.LabelBuy, "Attractive risk-adjusted return at current terms."
	case rank >= 0:
		return model.LabelMaybe, "Workable deal but requires better terms or deeper underwriting."
	default:
		return model.LabelPass, "Negative cashflow or weak coverage relative to risk."
	}
}

// suggestionFor preserves the human-facing action hint: maybes split on
// coverage strength.
func suggestionFor(label model.Label, fin model.FinancialMetrics) string {
	switch label {
	case model.LabelBuy:
		return "buy"
	case model.LabelMaybe:
		if !fin.NoDebt && fin.DSCR < 1.15 {
			return "maybe (low DSCR)"
		}
		return "maybe negotiate"
	default:
		return "pass"
	}
}

func cocComponent(coc float64) float64 {
	return clamp(coc*100, -cocComponentBound, cocComponentBound)
}

func dscrComponent(fin model.FinancialMetrics) float64 {
	// All-cash deals have nothing to cover; credit the top bracket.
	if fin.NoDebt {
		return dscrComponentCeil
	}
	switch {
	case fin.DSCR <= 0:
		return dscrNonPositivePenalty
	case fin.DSCR < 1.0:
		return dscrBelowOnePenalty
	default:
		return clamp((fin.DSCR-1)*25, dscrComponentFloor, dscrComponentCeil)
	}
}

func breakevenComponent(occ float64) float64 {
	if occ <= breakevenSafeOccupancy {
		return 0
	}
	return math.Max(breakevenFloor, -(occ-breakevenSafeOccupancy)*breakevenSlope)
}

func domComponent(dom float64, strategy model.Strategy) float64 {
	excess := dom - domGraceDays
	if excess <= 0 {
		return 0
	}
	penalty := math.Min(excess*domSlope, domCap)
	if strategy == model.StrategyFlip {
		// Liquidity matters more when the exit is a sale.
		penalty *= domFlipMultiplier
	}
	return -penalty
}

// downsideComponent penalizes weak p10 valuations: a soft ARV floor
// costs up to 40 points, and a soft rent floor costs another 15 when
// the deal is already cashflow-negative.
func downsideComponent(arv, rent *model.QuantileBand, cashflow float64) float64 {
	var component float64

	if arv != nil && arv.P50 > 0 {
		ratio := arv.P10 / arv.P50
		if ratio < downsideSafeRatio {
			component -= clamp((downsideSafeRatio-ratio)*downsideSlope, 0, downsideMaxPenalty)
		}
	}

	if rent != nil && rent.P50 > 0 {
		if rent.P10/rent.P50 < downsideSafeRatio && cashflow < 0 {
			component += weakRentFloorPenalty
		}
	}

	return component
}

func flipComponent(p *float64, strategy model.Strategy) float64 {
	if p == nil {
		return 0
	}
	component := (*p - 0.5) * flipSwing
	if strategy != model.StrategyFlip {
		component *= flipHoldDamping
	}
	return component
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
