package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/underwrite"
)

var (
	batchInput   string
	batchWorkers int
	batchSave    bool
	batchJSON    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Underwrite a portfolio of properties concurrently",
	Long:  "Reads a JSON array of property payloads, evaluates them with a bounded worker pool, and prints a ranked table plus portfolio statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		data, err := os.ReadFile(batchInput)
		if err != nil {
			return eris.Wrapf(err, "read input %s", batchInput)
		}

		var payloads []propertyPayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return eris.Wrap(err, "decode payloads")
		}
		if len(payloads) == 0 {
			zap.L().Info("no properties in input")
			return nil
		}

		props := make([]model.PropertyInput, 0, len(payloads))
		for i, p := range payloads {
			prop, err := p.toPropertyInput()
			if err != nil {
				return eris.Wrapf(err, "payload %d", i)
			}
			props = append(props, prop)
		}

		ev, err := initEvaluator()
		if err != nil {
			return err
		}

		workers := batchWorkers
		if workers == 0 {
			workers = cfg.Batch.Workers
		}
		evals, err := ev.EvaluateBatch(ctx, props, workers)
		if err != nil {
			return eris.Wrap(err, "evaluate batch")
		}

		if batchSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			for _, eval := range evals {
				if _, err := st.SaveEvaluation(ctx, eval); err != nil {
					return eris.Wrap(err, "save evaluation")
				}
			}
			zap.L().Info("batch saved", zap.Int("deals", len(evals)))
		}

		summary := underwrite.Summarize(evals)

		if batchJSON {
			return printJSON(cmd.OutOrStdout(), struct {
				Deals   []*model.DealEvaluation     `json:"deals"`
				Summary underwrite.PortfolioSummary `json:"summary"`
			}{evals, summary})
		}

		printDealTable(cmd, evals)
		printSummary(cmd, summary)
		return nil
	},
}

func printDealTable(cmd *cobra.Command, evals []*model.DealEvaluation) {
	sorted := make([]*model.DealEvaluation, len(evals))
	copy(sorted, evals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RankScore > sorted[j].RankScore
	})

	p := message.NewPrinter(language.AmericanEnglish)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-40s %-8s %-7s %7s %9s %8s %8s\n",
		"ADDRESS", "LABEL", "RISK", "SCORE", "PRICE", "DSCR", "COC")
	for _, e := range sorted {
		dscr := p.Sprintf("%.2f", e.Finance.DSCR)
		if e.Finance.NoDebt {
			dscr = "cash"
		}
		fmt.Fprintf(out, "%-40.40s %-8s %-7s %7.1f %9s %8s %7.1f%%\n",
			e.Address, labelGlyph(e.Label), string(e.RiskTier), e.RankScore,
			p.Sprintf("$%.0f", e.ListPrice), dscr, e.Finance.CashOnCashReturn*100)
	}
}

func printSummary(cmd *cobra.Command, s underwrite.PortfolioSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nPortfolio: %d deals (%d buy, %d pass)\n", s.Count, s.BuyCount, s.PassCount)
	fmt.Fprintf(out, "DSCR  mean %.2f  p5 %.2f  p50 %.2f  p95 %.2f\n", s.MeanDSCR, s.DSCRP5, s.DSCRP50, s.DSCRP95)
	fmt.Fprintf(out, "CoC   mean %.1f%%  p5 %.1f%%  p50 %.1f%%  p95 %.1f%%\n",
		s.MeanCoC*100, s.CoCP5*100, s.CoCP50*100, s.CoCP95*100)
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "path to JSON array of property payloads (required)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent evaluations (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist evaluations to the deal store")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "emit deals and summary as JSON")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
