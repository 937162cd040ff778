package scorer

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

// ApplyRules runs the hard safety gates and uncertainty-derived
// confidence over a scenario triplet and settles the final label, risk
// tier, confidence, warnings, and hard flags. It is a single-pass
// classifier: {hard-fail, buy, maybe, pass} are terminal outputs, not
// states.
func ApplyRules(eval *model.DealEvaluation, t RulesThresholds) {
	var warnings []string
	var hardFlags []string

	base := eval.Base
	down := eval.Downside

	// Basic sanity gates. These accumulate independent of score.
	if eval.ListPrice <= 0 {
		hardFlags = append(hardFlags, "non-positive list price")
	}
	if eval.ListPrice > 0 && base.ARV > 0 {
		ratio := base.ARV / eval.ListPrice
		if ratio < t.ARVLowRatio {
			hardFlags = append(hardFlags, fmt.Sprintf("ARV is %.2fx list price (below %.2fx policy floor)", ratio, t.ARVLowRatio))
		} else if ratio > t.ARVHighRatio {
			hardFlags = append(hardFlags, fmt.Sprintf("ARV is %.2fx list price (above %.2fx policy ceiling)", ratio, t.ARVHighRatio))
		} else if ratio < 0.8 {
			warnings = append(warnings, "ARV is unusually low relative to list price (possible data issue)")
		}
	}

	// Rental safety, downside first. All-cash deals skip the coverage
	// gate: there is no debt service to fail.
	if !down.NoDebt && down.DSCR < 1.0 {
		hardFlags = append(hardFlags, fmt.Sprintf("downside DSCR < 1.0 (%.2f)", down.DSCR))
	}
	if down.MonthlyCashflow < 0 {
		hardFlags = append(hardFlags, fmt.Sprintf("negative downside cashflow ($%.0f/mo)", down.MonthlyCashflow))
	}

	// Base performance thresholds.
	meetsBuy := coversDebt(base, t.MinDSCRBuy) &&
		base.CoC >= t.MinCoCBuy &&
		coversDebt(down, t.MinDSCRDownside) &&
		down.CoC >= t.MinCoCDownside

	// Confidence from uncertainty: the wider of the two relative
	// spreads discounts conviction.
	uncertaintyPenalty := math.Max(eval.ARVQuantiles.RelativeSpread(), eval.RentQuantiles.RelativeSpread())
	confidence := math.Max(0, 1-uncertaintyPenalty*t.UncertaintyWeight)

	// Final decision.
	var label model.Label
	var tier model.RiskTier
	switch {
	case len(hardFlags) > 0:
		label, tier = model.LabelPass, model.RiskHigh
	case meetsBuy && confidence >= t.MinConfidenceForBuy:
		label, tier = model.LabelBuy, model.RiskLow
	case coversDebt(base, t.MinDSCRMaybe) && base.CoC >= t.MinCoCMaybe:
		label, tier = model.LabelMaybe, model.RiskMedium
	default:
		label, tier = model.LabelPass, model.RiskMedium
	}

	eval.Label = label
	eval.RiskTier = tier
	eval.Confidence = confidence
	eval.Warnings = warnings
	eval.HardFlags = hardFlags

	if len(hardFlags) > 0 {
		zap.L().Debug("scorer: deal hard-flagged",
			zap.String("address", eval.Address),
			zap.Strings("hard_flags", hardFlags),
		)
	}
}

func coversDebt(s model.ScenarioMetrics, minDSCR float64) bool {
	return s.NoDebt || s.DSCR >= minDSCR
}
