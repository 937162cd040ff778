package underwrite

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/quantile"
	"github.com/haven-labs/haven-cli/internal/scorer"
)

func testAssumptions() model.UnderwritingAssumptions {
	return model.UnderwritingAssumptions{
		VacancyRate:      0.05,
		MaintenanceRate:  0.08,
		PropertyMgmtRate: 0.10,
		CapexRate:        0.05,
		ClosingCostPct:   0.03,
		MinDSCRGood:      1.25,
	}
}

func solidRental() model.PropertyInput {
	return model.PropertyInput{
		PropertyType:       model.PropertySingleFamily,
		Address:            "123 Main St",
		City:               "Springfield",
		State:              "OH",
		Zipcode:            "45501",
		ListPrice:          150_000,
		Sqft:               1_400,
		Bedrooms:           3,
		Bathrooms:          2,
		DownPaymentPct:     0.25,
		InterestRateAnnual: 0.065,
		LoanTermYears:      30,
		TaxesAnnual:        3_000,
		InsuranceAnnual:    1_200,
		EstMarketRent:      2_200,
		Strategy:           model.StrategyHold,
	}
}

func newTestEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(testAssumptions(), scorer.DefaultThresholds(), opts...)
	require.NoError(t, err)
	return ev
}

// stubBandProvider returns a fixed band, or an error when set.
type stubBandProvider struct {
	band *quantile.RawBand
	err  error
}

func (s stubBandProvider) Predict(context.Context, *model.PropertyInput) (*quantile.RawBand, error) {
	return s.band, s.err
}
func (s stubBandProvider) Version() string { return "stub-band/v1" }

type stubFlip struct {
	p   float64
	err error
}

func (s stubFlip) PredictProba(context.Context, FlipFeatures) (float64, error) { return s.p, s.err }
func (s stubFlip) Version() string                                             { return "stub-flip/v1" }

func TestNewEvaluator_RejectsBadInputs(t *testing.T) {
	bad := testAssumptions()
	bad.VacancyRate = 1.5
	_, err := NewEvaluator(bad, scorer.DefaultThresholds())
	assert.Error(t, err)

	badT := scorer.DefaultThresholds()
	badT.MinDSCRBuy = -1
	_, err = NewEvaluator(testAssumptions(), badT)
	assert.Error(t, err)
}

func TestEvaluate_SolidRentalBuys(t *testing.T) {
	ev := newTestEvaluator(t)
	eval := ev.Evaluate(context.Background(), solidRental())

	assert.Equal(t, model.LabelBuy, eval.Label)
	assert.Equal(t, model.RiskLow, eval.RiskTier)
	assert.Equal(t, "buy", eval.Suggestion)
	assert.Greater(t, eval.RankScore, 15.0)
	assert.Empty(t, eval.HardFlags)

	// Built-in bands are +/-10%, so confidence lands at 0.8.
	assert.InDelta(t, 0.8, eval.Confidence, 0.01)

	assert.Greater(t, eval.Finance.DSCR, 1.3)
	assert.Greater(t, eval.Finance.CashOnCashReturn, 0.10)
}

func TestEvaluate_ScenarioTripletOrdering(t *testing.T) {
	ev := newTestEvaluator(t)
	eval := ev.Evaluate(context.Background(), solidRental())

	assert.Less(t, eval.Downside.Rent, eval.Base.Rent)
	assert.Less(t, eval.Base.Rent, eval.Upside.Rent)
	assert.Less(t, eval.Downside.DSCR, eval.Base.DSCR)
	assert.Less(t, eval.Downside.ARV, eval.Upside.ARV)

	// Scenario rents come from the band, not the schedule.
	assert.InDelta(t, 1_980, eval.Downside.Rent, 0.01)
	assert.InDelta(t, 2_200, eval.Base.Rent, 0.01)
	assert.InDelta(t, 2_420, eval.Upside.Rent, 0.01)
}

func TestEvaluate_OverpricedWeakRentPasses(t *testing.T) {
	prop := solidRental()
	prop.ListPrice = 400_000
	prop.EstMarketRent = 1_800

	ev := newTestEvaluator(t)
	eval := ev.Evaluate(context.Background(), prop)

	assert.Equal(t, model.LabelPass, eval.Label)
	assert.Equal(t, "pass", eval.Suggestion)
	assert.NotEmpty(t, eval.HardFlags)
	assert.LessOrEqual(t, eval.RankScore, -25.0)
}

func TestEvaluate_ProviderFailureDegradesToFallback(t *testing.T) {
	ev := newTestEvaluator(t,
		WithARVProvider(stubBandProvider{err: eris.New("model offline")}),
	)
	eval := ev.Evaluate(context.Background(), solidRental())

	// Synthetic fallback: +/-5% around list price.
	assert.InDelta(t, 142_500, eval.ARVQuantiles.P10, 0.01)
	assert.InDelta(t, 150_000, eval.ARVQuantiles.P50, 0.01)
	assert.InDelta(t, 157_500, eval.ARVQuantiles.P90, 0.01)
}

func TestEvaluate_CustomBandsFlowThrough(t *testing.T) {
	ev := newTestEvaluator(t,
		WithARVProvider(stubBandProvider{band: &quantile.RawBand{P10: 180_000, P50: 190_000, P90: 200_000}}),
	)
	eval := ev.Evaluate(context.Background(), solidRental())

	assert.Equal(t, 190_000.0, eval.ARVQuantiles.P50)
	assert.Equal(t, 180_000.0, eval.Downside.ARV)
	assert.Equal(t, 200_000.0, eval.Upside.ARV)
	assert.Equal(t, "stub-band/v1", eval.ModelVersions["arv"])
}

func TestEvaluate_FlipClassifierWiring(t *testing.T) {
	prop := solidRental()
	prop.Strategy = model.StrategyFlip

	ev := newTestEvaluator(t, WithFlipClassifier(stubFlip{p: 0.9}))
	eval := ev.Evaluate(context.Background(), prop)

	assert.Equal(t, "stub-flip/v1", eval.ModelVersions["flip"])

	// Classifier failure must not sink the evaluation.
	ev = newTestEvaluator(t, WithFlipClassifier(stubFlip{err: eris.New("offline")}))
	eval = ev.Evaluate(context.Background(), prop)
	assert.NotNil(t, eval)
}

func TestEvaluate_FillsMissingRentWithoutMutatingInput(t *testing.T) {
	prop := solidRental()
	prop.EstMarketRent = 0

	ev := newTestEvaluator(t)
	eval := ev.Evaluate(context.Background(), prop)

	// Heuristic: 500 + 400*3 + 250*2 + 1400 = 3600.
	assert.InDelta(t, 3_600, eval.Finance.GrossRentMonthly, 0.01)
	assert.Zero(t, prop.EstMarketRent)
}

func TestEvaluate_EmptyStrategyDefaultsToHold(t *testing.T) {
	prop := solidRental()
	prop.Strategy = ""

	ev := newTestEvaluator(t)
	eval := ev.Evaluate(context.Background(), prop)
	assert.Equal(t, model.StrategyHold, eval.Strategy)
}
