// Package scorer implements the risk-adjusted ranking heuristic, the
// rules-based label engine, and the post-hoc guardrail inspector.
package scorer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RulesThresholds holds the policy knobs for the rules engine. The
// defaults encode the house buy box; a YAML policy file can override
// any of them per run.
type RulesThresholds struct {
	MinDSCRBuy      float64 `yaml:"min_dscr_buy" mapstructure:"min_dscr_buy"`
	MinCoCBuy       float64 `yaml:"min_coc_buy" mapstructure:"min_coc_buy"`
	MinDSCRDownside float64 `yaml:"min_dscr_downside" mapstructure:"min_dscr_downside"`
	MinCoCDownside  float64 `yaml:"min_coc_downside" mapstructure:"min_coc_downside"`

	MinDSCRMaybe float64 `yaml:"min_dscr_maybe" mapstructure:"min_dscr_maybe"`
	MinCoCMaybe  float64 `yaml:"min_coc_maybe" mapstructure:"min_coc_maybe"`

	UncertaintyWeight   float64 `yaml:"uncertainty_weight" mapstructure:"uncertainty_weight"`
	MinConfidenceForBuy float64 `yaml:"min_confidence_for_buy" mapstructure:"min_confidence_for_buy"`

	// ARV-vs-list-price consistency band; outside it the deal is
	// hard-flagged as a data or model problem.
	ARVLowRatio  float64 `yaml:"arv_low_ratio" mapstructure:"arv_low_ratio"`
	ARVHighRatio float64 `yaml:"arv_high_ratio" mapstructure:"arv_high_ratio"`
}

// DefaultThresholds returns the house policy:
// buy needs base DSCR >= 1.25 and CoC >= 10% with downside DSCR >= 1.10
// and CoC >= 6%; maybe needs base DSCR >= 1.10 and CoC >= 5%.
func DefaultThresholds() RulesThresholds {
	return RulesThresholds{
		MinDSCRBuy:      1.25,
		MinCoCBuy:       0.10,
		MinDSCRDownside: 1.10,
		MinCoCDownside:  0.06,

		MinDSCRMaybe: 1.10,
		MinCoCMaybe:  0.05,

		UncertaintyWeight:   1.0,
		MinConfidenceForBuy: 0.6,

		ARVLowRatio:  0.5,
		ARVHighRatio: 2.0,
	}
}

// ValidateThresholds checks that a RulesThresholds is internally consistent.
func ValidateThresholds(t RulesThresholds) error {
	var errs []string

	nonNegative := map[string]float64{
		"min_dscr_buy":       t.MinDSCRBuy,
		"min_dscr_downside":  t.MinDSCRDownside,
		"min_dscr_maybe":     t.MinDSCRMaybe,
		"uncertainty_weight": t.UncertaintyWeight,
	}
	for name, v := range nonNegative {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if t.MinConfidenceForBuy < 0 || t.MinConfidenceForBuy > 1 {
		errs = append(errs, "min_confidence_for_buy must be between 0 and 1")
	}
	if t.MinDSCRBuy < t.MinDSCRMaybe {
		errs = append(errs, "min_dscr_buy must be >= min_dscr_maybe")
	}
	if t.MinCoCBuy < t.MinCoCMaybe {
		errs = append(errs, "min_coc_buy must be >= min_coc_maybe")
	}
	if t.ARVLowRatio <= 0 || t.ARVHighRatio <= t.ARVLowRatio {
		errs = append(errs, "arv ratio band must satisfy 0 < arv_low_ratio < arv_high_ratio")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: thresholds validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadPolicy reads a YAML policy file over the default thresholds. Keys
// absent from the file keep their defaults.
func LoadPolicy(path string) (RulesThresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrapf(err, "scorer: read policy %s", path)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrapf(err, "scorer: parse policy %s", path)
	}
	if err := ValidateThresholds(t); err != nil {
		return t, err
	}
	return t, nil
}
