package model

// FinancialMetrics is the full underwriting breakdown for one rent/price
// combination. Every field is recomputed per call; nothing is cached.
type FinancialMetrics struct {
	PurchasePrice float64 `json:"purchase_price"`
	DownPayment   float64 `json:"down_payment"`
	LoanAmount    float64 `json:"loan_amount"`

	MortgageMonthly float64 `json:"mortgage_monthly"`

	GrossRentMonthly     float64 `json:"gross_rent_monthly"`
	VacancyLossMonthly   float64 `json:"vacancy_loss_monthly"`
	EffectiveRentMonthly float64 `json:"effective_rent_monthly"`

	OperatingExpensesMonthly float64 `json:"operating_expenses_monthly"`
	NOIMonthly               float64 `json:"noi_monthly"`
	NOIAnnual                float64 `json:"noi_annual"`

	CapRate float64 `json:"cap_rate"`

	// DSCR is meaningless when NoDebt is set: an all-cash deal has no
	// debt service to cover. Callers must branch on NoDebt instead of
	// treating DSCR as a numeric maximum.
	DSCR   float64 `json:"dscr"`
	NoDebt bool    `json:"no_debt,omitempty"`

	CashflowMonthlyAfterDebt float64 `json:"cashflow_monthly_after_debt"`
	CashOnCashReturn         float64 `json:"cash_on_cash_return"`
	BreakevenOccupancyPct    float64 `json:"breakeven_occupancy_pct"`

	MeetsLenderDSCR bool `json:"meets_lender_dscr_threshold"`
}

// CoversDebt reports whether the deal services its debt at the given
// minimum coverage ratio. All-cash deals trivially cover.
func (m FinancialMetrics) CoversDebt(minDSCR float64) bool {
	return m.NoDebt || m.DSCR >= minDSCR
}

// QuantileBand is a p10/p50/p90 uncertainty interval for a predicted
// value (ARV or rent). After sanitization p10 <= p50 <= p90 always holds.
type QuantileBand struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// RelativeSpread returns (p90-p10)/p50 with the median floored at 1 to
// keep the ratio defined for degenerate bands.
func (b QuantileBand) RelativeSpread() float64 {
	den := b.P50
	if den < 1 {
		den = 1
	}
	return (b.P90 - b.P10) / den
}

// ScenarioMetrics is the finance bundle for one quantile level.
type ScenarioMetrics struct {
	ARV             float64 `json:"arv"`
	Rent            float64 `json:"rent"`
	NOI             float64 `json:"noi"` // annual
	DSCR            float64 `json:"dscr"`
	NoDebt          bool    `json:"no_debt,omitempty"`
	CoC             float64 `json:"coc"`
	CapRate         float64 `json:"cap_rate"`
	BreakevenOcc    float64 `json:"breakeven_occ"`
	MonthlyCashflow float64 `json:"monthly_cashflow"`
}

// Label is the terminal recommendation for a deal.
type Label string

const (
	LabelBuy   Label = "buy"
	LabelMaybe Label = "maybe"
	LabelPass  Label = "pass"
)

// RiskTier buckets the downside exposure of a recommendation.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// GuardrailSeverity grades a guardrail flag.
type GuardrailSeverity string

const (
	SeverityWarning GuardrailSeverity = "warning"
	SeverityError   GuardrailSeverity = "error"
)

// GuardrailFlag annotates an implausible result for human review. Flags
// never alter the label or score.
type GuardrailFlag struct {
	Code     string             `json:"code"`
	Severity GuardrailSeverity  `json:"severity"`
	Message  string             `json:"message"`
	Context  map[string]float64 `json:"context,omitempty"`
}

// PricingSummary holds per-quantile flip economics and a fair-value
// estimate for the listing.
type PricingSummary struct {
	AskPrice float64 `json:"ask_price"`

	// Per-quantile flip analysis.
	ProfitP10 float64 `json:"profit_p10"`
	ProfitP50 float64 `json:"profit_p50"`
	ProfitP90 float64 `json:"profit_p90"`
	MAOP10    float64 `json:"mao_p10"`
	MAOP50    float64 `json:"mao_p50"`
	MAOP90    float64 `json:"mao_p90"`

	// Hold-side valuation.
	FairValueEstimate float64 `json:"fair_value_estimate"`
	PriceDelta        float64 `json:"price_delta"`
	PriceDeltaPct     float64 `json:"price_delta_pct"`
}

// ScoreResult is the output of the risk-adjusted scorer for one deal.
type ScoreResult struct {
	RankScore  float64            `json:"rank_score"`
	Label      Label              `json:"label"`
	Suggestion string             `json:"suggestion"`
	Reason     string             `json:"reason"`
	Components map[string]float64 `json:"components"`
	Strategy   Strategy           `json:"strategy"`
}

// DealEvaluation is the terminal output of one evaluation call.
// Ownership passes to the caller, which may persist or serialize it.
type DealEvaluation struct {
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zipcode   string   `json:"zipcode"`
	ListPrice float64  `json:"list_price"`
	Strategy  Strategy `json:"strategy"`

	Downside ScenarioMetrics `json:"downside"`
	Base     ScenarioMetrics `json:"base"`
	Upside   ScenarioMetrics `json:"upside"`

	Label      Label    `json:"label"`
	RiskTier   RiskTier `json:"risk_tier"`
	Confidence float64  `json:"confidence"`

	RankScore  float64 `json:"rank_score"`
	Suggestion string  `json:"suggestion"`
	Reason     string  `json:"reason"`

	Finance FinancialMetrics `json:"finance"`
	Pricing PricingSummary   `json:"pricing"`

	ARVQuantiles  QuantileBand      `json:"arv_quantiles"`
	RentQuantiles QuantileBand      `json:"rent_quantiles"`
	ModelVersions map[string]string `json:"model_versions,omitempty"`

	Warnings   []string        `json:"warnings,omitempty"`
	HardFlags  []string        `json:"hard_flags,omitempty"`
	Guardrails []GuardrailFlag `json:"guardrails,omitempty"`
}
