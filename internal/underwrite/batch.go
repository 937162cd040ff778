package underwrite

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haven-labs/haven-cli/internal/model"
)

// DefaultBatchWorkers bounds concurrent evaluations when the caller
// passes a non-positive worker count.
const DefaultBatchWorkers = 8

// PortfolioSummary aggregates batch-level return and coverage
// distributions. All-cash deals are excluded from the DSCR stats.
type PortfolioSummary struct {
	Count     int `json:"count"`
	BuyCount  int `json:"buy_count"`
	PassCount int `json:"pass_count"`

	MeanDSCR float64 `json:"mean_dscr"`
	DSCRP5   float64 `json:"dscr_p5"`
	DSCRP50  float64 `json:"dscr_p50"`
	DSCRP95  float64 `json:"dscr_p95"`

	MeanCoC float64 `json:"mean_coc"`
	CoCP5   float64 `json:"coc_p5"`
	CoCP50  float64 `json:"coc_p50"`
	CoCP95  float64 `json:"coc_p95"`
}

// EvaluateBatch underwrites properties concurrently with at most
// workers in flight. Results keep input order. Evaluation is total per
// item, so the only error path is context cancellation.
func (e *Evaluator) EvaluateBatch(ctx context.Context, props []model.PropertyInput, workers int) ([]*model.DealEvaluation, error) {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}

	results := make([]*model.DealEvaluation, len(props))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range props {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.Evaluate(ctx, props[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("underwrite: batch complete",
		zap.Int("properties", len(props)),
		zap.Int("workers", workers),
	)
	return results, nil
}

// Summarize reduces a batch of evaluations into portfolio statistics.
func Summarize(evals []*model.DealEvaluation) PortfolioSummary {
	s := PortfolioSummary{Count: len(evals)}

	var dscrs, cocs []float64
	for _, ev := range evals {
		if ev == nil {
			s.Count--
			continue
		}
		switch ev.Label {
		case model.LabelBuy:
			s.BuyCount++
		case model.LabelPass:
			s.PassCount++
		}
		if !ev.Finance.NoDebt {
			dscrs = append(dscrs, ev.Finance.DSCR)
		}
		cocs = append(cocs, ev.Finance.CashOnCashReturn)
	}

	s.MeanDSCR = mean(dscrs)
	s.DSCRP5 = percentile(dscrs, 0.05)
	s.DSCRP50 = percentile(dscrs, 0.50)
	s.DSCRP95 = percentile(dscrs, 0.95)

	s.MeanCoC = mean(cocs)
	s.CoCP5 = percentile(cocs, 0.05)
	s.CoCP50 = percentile(cocs, 0.50)
	s.CoCP95 = percentile(cocs, 0.95)

	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// percentile uses linear interpolation between closest ranks.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
