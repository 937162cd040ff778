package underwrite

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/finance"
	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/quantile"
	"github.com/haven-labs/haven-cli/internal/rentest"
	"github.com/haven-labs/haven-cli/internal/scorer"
	"github.com/haven-labs/haven-cli/internal/valuation"
)

// Evaluator runs the deal evaluation pipeline. It owns no model state:
// providers are injected at construction and consulted per call, and
// every call is independent, so one Evaluator may be shared by any
// number of goroutines.
type Evaluator struct {
	assumptions model.UnderwritingAssumptions
	thresholds  scorer.RulesThresholds
	flipCosts   valuation.FlipAssumptions

	rents *rentest.Estimator
	arv   QuantileProvider
	rent  QuantileProvider
	flip  FlipClassifier // nil disables the flip component
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithARVProvider replaces the built-in ARV band provider.
func WithARVProvider(p QuantileProvider) Option { return func(e *Evaluator) { e.arv = p } }

// WithRentProvider replaces the built-in rent band provider.
func WithRentProvider(p QuantileProvider) Option { return func(e *Evaluator) { e.rent = p } }

// WithFlipClassifier wires an optional flip-probability model.
func WithFlipClassifier(c FlipClassifier) Option { return func(e *Evaluator) { e.flip = c } }

// WithFlipAssumptions overrides the flip cost model.
func WithFlipAssumptions(a valuation.FlipAssumptions) Option {
	return func(e *Evaluator) { e.flipCosts = a }
}

// NewEvaluator validates the assumptions and thresholds and builds an
// evaluator with the fallback providers unless options replace them.
func NewEvaluator(assumptions model.UnderwritingAssumptions, thresholds scorer.RulesThresholds, opts ...Option) (*Evaluator, error) {
	if err := assumptions.Validate(); err != nil {
		return nil, eris.Wrap(err, "underwrite: assumptions")
	}
	if err := scorer.ValidateThresholds(thresholds); err != nil {
		return nil, eris.Wrap(err, "underwrite: thresholds")
	}

	e := &Evaluator{
		assumptions: assumptions,
		thresholds:  thresholds,
		flipCosts:   valuation.DefaultFlipAssumptions(),
		rents:       rentest.NewEstimator(),
		arv:         ListPriceARVProvider{},
		rent:        ScheduledRentProvider{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate underwrites one property. The property is taken by value:
// rent filling happens on the copy and the caller's input is never
// mutated. Evaluate is total — provider failures degrade to fallback
// bands and no input combination errors.
func (e *Evaluator) Evaluate(ctx context.Context, prop model.PropertyInput) *model.DealEvaluation {
	if prop.Strategy == "" {
		prop.Strategy = model.StrategyHold
	}

	e.rents.FillMissingRents(&prop)

	fin := finance.ComputeMetrics(&prop, e.assumptions)

	arvBand := e.predictBand(ctx, e.arv, &prop, prop.ListPrice)
	rentBand := e.predictBand(ctx, e.rent, &prop, prop.GrossRentMonthly())

	eval := &model.DealEvaluation{
		Address:   prop.Address,
		City:      prop.City,
		State:     prop.State,
		Zipcode:   prop.Zipcode,
		ListPrice: prop.ListPrice,
		Strategy:  prop.Strategy,

		Finance: fin,

		ARVQuantiles:  arvBand,
		RentQuantiles: rentBand,
		ModelVersions: e.modelVersions(),
	}

	eval.Downside = buildScenario(&prop, e.assumptions, arvBand.P10, rentBand.P10)
	eval.Base = buildScenario(&prop, e.assumptions, arvBand.P50, rentBand.P50)
	eval.Upside = buildScenario(&prop, e.assumptions, arvBand.P90, rentBand.P90)

	flipProb := e.predictFlip(ctx, &prop, fin)

	score := scorer.Score(scorer.ScoreInput{
		Finance:         fin,
		ARVBand:         &arvBand,
		RentBand:        &rentBand,
		DaysOnMarket:    prop.DaysOnMarket,
		Strategy:        prop.Strategy,
		FlipProbability: flipProb,
	})
	eval.RankScore = score.RankScore
	eval.Suggestion = score.Suggestion
	eval.Reason = score.Reason
	eval.Label = score.Label

	// Rules settle the final label, tier, confidence, and flags.
	scorer.ApplyRules(eval, e.thresholds)

	// Suggestion must agree with the settled label when rules demote it.
	if eval.Label == model.LabelPass {
		eval.Suggestion = "pass"
	}

	eval.Pricing = valuation.Summarize(&prop, arvBand, fin, e.flipCosts)
	eval.Guardrails = scorer.Inspect(&prop, eval)

	zap.L().Info("underwrite: deal evaluated",
		zap.String("address", prop.ShortAddress()),
		zap.String("label", string(eval.Label)),
		zap.String("risk_tier", string(eval.RiskTier)),
		zap.Float64("rank_score", eval.RankScore),
		zap.Float64("confidence", eval.Confidence),
		zap.Int("guardrails", len(eval.Guardrails)),
	)

	return eval
}

// buildScenario recomputes the metrics engine at one quantile level,
// substituting the band rent for scheduled rent.
func buildScenario(prop *model.PropertyInput, a model.UnderwritingAssumptions, arv, rent float64) model.ScenarioMetrics {
	fin := finance.ComputeMetricsAtRent(prop, a, rent)
	return model.ScenarioMetrics{
		ARV:             arv,
		Rent:            rent,
		NOI:             fin.NOIAnnual,
		DSCR:            fin.DSCR,
		NoDebt:          fin.NoDebt,
		CoC:             fin.CashOnCashReturn,
		CapRate:         fin.CapRate,
		BreakevenOcc:    fin.BreakevenOccupancyPct,
		MonthlyCashflow: fin.CashflowMonthlyAfterDebt,
	}
}

// predictBand consults a provider and sanitizes whatever comes back.
// Errors and nil bands both degrade to the synthetic fallback.
func (e *Evaluator) predictBand(ctx context.Context, p QuantileProvider, prop *model.PropertyInput, fallback float64) model.QuantileBand {
	if p == nil {
		return quantile.Sanitize(nil, fallback)
	}
	raw, err := p.Predict(ctx, prop)
	if err != nil {
		zap.L().Warn("underwrite: quantile provider failed, using fallback band",
			zap.String("model", p.Version()),
			zap.Error(err),
		)
		raw = nil
	}
	return quantile.Sanitize(raw, fallback)
}

// predictFlip consults the optional classifier. Absence or failure
// yields nil, which zeroes the flip component downstream.
func (e *Evaluator) predictFlip(ctx context.Context, prop *model.PropertyInput, fin model.FinancialMetrics) *float64 {
	if e.flip == nil {
		return nil
	}
	p, err := e.flip.PredictProba(ctx, FlipFeatures{
		DSCR:                  fin.DSCR,
		CashOnCashReturn:      fin.CashOnCashReturn,
		BreakevenOccupancyPct: fin.BreakevenOccupancyPct,
		Price:                 prop.ListPrice,
		Sqft:                  prop.Sqft,
		DaysOnMarket:          prop.DaysOnMarket,
	})
	if err != nil {
		zap.L().Warn("underwrite: flip classifier failed, component disabled",
			zap.String("model", e.flip.Version()),
			zap.Error(err),
		)
		return nil
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &p
}

func (e *Evaluator) modelVersions() map[string]string {
	v := map[string]string{}
	if e.arv != nil {
		v["arv"] = e.arv.Version()
	}
	if e.rent != nil {
		v["rent"] = e.rent.Version()
	}
	if e.flip != nil {
		v["flip"] = e.flip.Version()
	}
	return v
}
