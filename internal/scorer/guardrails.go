package scorer

import (
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

// Guardrail flag codes.
const (
	FlagListPriceMissing = "LIST_PRICE_MISSING"
	FlagARVTooLow        = "ARV_TOO_LOW"
	FlagARVTooHigh       = "ARV_TOO_HIGH"
	FlagRehabExceedsARV  = "REHAB_EXCEEDS_ARV"
	FlagNegativeProfit   = "NEGATIVE_PROFIT_P50"
	FlagListAboveMAO     = "LIST_ABOVE_MAO"
	FlagDSCRBelowOne     = "DSCR_BELOW_ONE"
)

// ARV/list ratio band for guardrail purposes. Wider than the rules
// engine's hard-flag band: guardrails annotate, rules decide.
const (
	guardrailARVLowRatio  = 0.5
	guardrailARVHighRatio = 3.0
)

// Inspect runs the post-hoc sanity checks over a finished evaluation
// and returns the flags it raised. Each check is independent; flags
// never alter the score or label.
func Inspect(prop *model.PropertyInput, eval *model.DealEvaluation) []model.GuardrailFlag {
	var flags []model.GuardrailFlag

	listPrice := prop.ListPrice
	arvEst := eval.ARVQuantiles.P50
	if arvEst <= 0 {
		// Worst case the ask price stands in; the ratio checks become no-ops.
		arvEst = listPrice
	}

	if listPrice <= 0 {
		flags = append(flags, model.GuardrailFlag{
			Code:     FlagListPriceMissing,
			Severity: model.SeverityWarning,
			Message:  "List price is missing or zero.",
			Context:  map[string]float64{"list_price": listPrice},
		})
	}

	if listPrice > 0 && arvEst > 0 {
		ratio := arvEst / listPrice
		ctx := map[string]float64{"list_price": listPrice, "arv_est": arvEst, "ratio": ratio}
		if ratio < guardrailARVLowRatio {
			flags = append(flags, model.GuardrailFlag{
				Code:     FlagARVTooLow,
				Severity: model.SeverityWarning,
				Message:  "ARV is less than 50% of list price. Likely a bad flip/hold.",
				Context:  ctx,
			})
		} else if ratio > guardrailARVHighRatio {
			flags = append(flags, model.GuardrailFlag{
				Code:     FlagARVTooHigh,
				Severity: model.SeverityWarning,
				Message:  "ARV is more than 3x list price. Check comps and model output.",
				Context:  ctx,
			})
		}
	}

	if arvEst > 0 && prop.RehabBudget > arvEst {
		flags = append(flags, model.GuardrailFlag{
			Code:     FlagRehabExceedsARV,
			Severity: model.SeverityError,
			Message:  "Rehab budget exceeds ARV. Deal almost certainly does not pencil.",
			Context:  map[string]float64{"arv_est": arvEst, "rehab_budget": prop.RehabBudget},
		})
	}

	if eval.Pricing.ProfitP50 < 0 {
		flags = append(flags, model.GuardrailFlag{
			Code:     FlagNegativeProfit,
			Severity: model.SeverityWarning,
			Message:  "Median flip profit (p50) is negative.",
			Context:  map[string]float64{"profit_p50": eval.Pricing.ProfitP50},
		})
	}

	if eval.Pricing.MAOP50 > 0 && listPrice > eval.Pricing.MAOP50 {
		flags = append(flags, model.GuardrailFlag{
			Code:     FlagListAboveMAO,
			Severity: model.SeverityWarning,
			Message:  "List price is above MAO (p50). Negotiate or walk away.",
			Context:  map[string]float64{"list_price": listPrice, "mao_p50": eval.Pricing.MAOP50},
		})
	}

	if !eval.Finance.NoDebt && eval.Finance.DSCR < 1.0 {
		flags = append(flags, model.GuardrailFlag{
			Code:     FlagDSCRBelowOne,
			Severity: model.SeverityWarning,
			Message:  "DSCR below 1.0: rent does not cover debt service.",
			Context:  map[string]float64{"dscr": eval.Finance.DSCR},
		})
	}

	if len(flags) > 0 {
		codes := make([]string, len(flags))
		for i, f := range flags {
			codes[i] = f.Code
		}
		zap.L().Info("scorer: guardrail flags raised",
			zap.String("address", prop.ShortAddress()),
			zap.Strings("codes", codes),
		)
	}

	return flags
}
