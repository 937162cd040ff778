package finance

import (
	"github.com/haven-labs/haven-cli/internal/model"
)

// ComputeMetrics runs the full underwriting breakdown for a property at
// its scheduled rents. Operating expenses exclude the mortgage: debt is
// financing, not operations.
func ComputeMetrics(prop *model.PropertyInput, assumptions model.UnderwritingAssumptions) model.FinancialMetrics {
	return computeAtRent(prop, assumptions, prop.GrossRentMonthly())
}

// ComputeMetricsAtRent runs the same breakdown with the gross monthly
// rent overridden, which is how scenario construction swaps quantile
// rents in without mutating the property.
func ComputeMetricsAtRent(prop *model.PropertyInput, assumptions model.UnderwritingAssumptions, grossRentMonthly float64) model.FinancialMetrics {
	return computeAtRent(prop, assumptions, grossRentMonthly)
}

func computeAtRent(prop *model.PropertyInput, a model.UnderwritingAssumptions, grossRent float64) model.FinancialMetrics {
	purchasePrice := prop.ListPrice
	downPayment := purchasePrice * prop.DownPaymentPct
	loanAmount := purchasePrice - downPayment

	mortgageMonthly := MonthlyPayment(loanAmount, prop.InterestRateAnnual, prop.LoanTermYears)

	// Income side.
	vacancyLoss := grossRent * a.VacancyRate
	effectiveRent := grossRent - vacancyLoss

	// Operating buckets, all monthly.
	maintenance := effectiveRent * a.MaintenanceRate
	mgmt := effectiveRent * a.PropertyMgmtRate
	capex := effectiveRent * a.CapexRate
	taxes := prop.TaxesAnnual / 12.0
	insurance := prop.InsuranceAnnual / 12.0
	totalOperating := maintenance + mgmt + capex + taxes + insurance + prop.HOAMonthly

	noiMonthly := effectiveRent - totalOperating
	noiAnnual := noiMonthly * 12.0

	annualDebtService := mortgageMonthly * 12.0

	// DSCR is undefined for all-cash deals; the sentinel keeps callers
	// from reading a fake numeric maximum.
	var dscr float64
	noDebt := annualDebtService <= 0
	if !noDebt {
		dscr = noiAnnual / annualDebtService
	}

	var capRate float64
	if purchasePrice > 0 {
		capRate = noiAnnual / purchasePrice
	}

	cashflowAfterDebt := effectiveRent - totalOperating - mortgageMonthly

	var cashOnCash float64
	totalCashIn := downPayment + purchasePrice*a.ClosingCostPct
	if totalCashIn > 0 {
		cashOnCash = (cashflowAfterDebt * 12.0) / totalCashIn
	}

	// Breakeven occupancy: the share of gross rent that must be
	// collected to cover operations plus debt. No rent means maximally
	// fragile, so 100%.
	breakeven := 1.0
	if grossRent > 0 {
		breakeven = (totalOperating + mortgageMonthly) / grossRent
	}

	return model.FinancialMetrics{
		PurchasePrice: purchasePrice,
		DownPayment:   downPayment,
		LoanAmount:    loanAmount,

		MortgageMonthly: mortgageMonthly,

		GrossRentMonthly:     grossRent,
		VacancyLossMonthly:   vacancyLoss,
		EffectiveRentMonthly: effectiveRent,

		OperatingExpensesMonthly: totalOperating,
		NOIMonthly:               noiMonthly,
		NOIAnnual:                noiAnnual,

		CapRate: capRate,
		DSCR:    dscr,
		NoDebt:  noDebt,

		CashflowMonthlyAfterDebt: cashflowAfterDebt,
		CashOnCashReturn:         cashOnCash,
		BreakevenOccupancyPct:    breakeven,

		MeetsLenderDSCR: noDebt || dscr >= a.MinDSCRGood,
	}
}
