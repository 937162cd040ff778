// Package finance implements the underwriting math: amortization and
// the per-deal financial metrics engine. Every function here is a pure
// computation over its inputs; divisions are guarded so no input
// combination panics or returns NaN.
package finance

import "math"

// MonthlyPayment computes the fixed-rate monthly debt-service payment
// for a loan:
//
//	M = P * r(1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate and n the number of payments. A zero rate
// degenerates to straight-line principal, and a non-positive principal
// or term yields zero.
func MonthlyPayment(principal, annualRate float64, termYears int) float64 {
	if principal <= 0 || termYears <= 0 {
		return 0
	}

	r := annualRate / 12.0
	n := float64(termYears * 12)

	if r == 0 {
		return principal / n
	}

	growth := math.Pow(1+r, n)
	return principal * (r * growth) / (growth - 1)
}
