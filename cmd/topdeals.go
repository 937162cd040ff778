package main

import (
	"encoding/csv"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/store"
)

// minScreeningPrice filters out parking spaces, land slivers, and data
// errors before they waste an evaluation.
const minScreeningPrice = 50_000

var (
	topZipcode  string
	topMaxPrice float64
	topLimit    int
	topSaveCSV  string
	topSaveXLSX string
)

var topDealsCmd = &cobra.Command{
	Use:   "top-deals",
	Short: "Screen stored listings and rank the best deals",
	Long:  "Pulls imported listings, underwrites each with the screening financing defaults, and prints the highest-ranked deals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		listings, err := st.SearchListings(ctx, store.ListingFilter{
			Zipcode:  topZipcode,
			MinPrice: minScreeningPrice,
			MaxPrice: topMaxPrice,
		})
		if err != nil {
			return eris.Wrap(err, "search listings")
		}
		if len(listings) == 0 {
			zap.L().Info("no listings matched the screen",
				zap.String("zipcode", topZipcode),
				zap.Float64("max_price", topMaxPrice),
			)
			return nil
		}

		props := make([]model.PropertyInput, 0, len(listings))
		for _, l := range listings {
			props = append(props, l.ToPropertyInput(cfg.Screening))
		}

		ev, err := initEvaluator()
		if err != nil {
			return err
		}
		evals, err := ev.EvaluateBatch(ctx, props, cfg.Batch.Workers)
		if err != nil {
			return eris.Wrap(err, "evaluate listings")
		}

		sort.SliceStable(evals, func(i, j int) bool {
			return evals[i].RankScore > evals[j].RankScore
		})
		if topLimit > 0 && len(evals) > topLimit {
			evals = evals[:topLimit]
		}

		if topSaveCSV != "" {
			if err := writeDealsCSV(topSaveCSV, evals); err != nil {
				return err
			}
			zap.L().Info("deals exported", zap.String("csv", topSaveCSV))
		}
		if topSaveXLSX != "" {
			if err := writeDealsXLSX(topSaveXLSX, evals); err != nil {
				return err
			}
			zap.L().Info("deals exported", zap.String("xlsx", topSaveXLSX))
		}

		printDealTable(cmd, evals)
		return nil
	},
}

var dealExportHeader = []string{
	"address", "zipcode", "list_price", "label", "risk_tier", "rank_score",
	"suggestion", "dscr", "coc", "cap_rate", "monthly_cashflow", "confidence",
}

func dealExportRow(e *model.DealEvaluation) []string {
	return []string{
		e.Address,
		e.Zipcode,
		strconv.FormatFloat(e.ListPrice, 'f', 0, 64),
		string(e.Label),
		string(e.RiskTier),
		strconv.FormatFloat(e.RankScore, 'f', 1, 64),
		e.Suggestion,
		strconv.FormatFloat(e.Finance.DSCR, 'f', 2, 64),
		strconv.FormatFloat(e.Finance.CashOnCashReturn, 'f', 4, 64),
		strconv.FormatFloat(e.Finance.CapRate, 'f', 4, 64),
		strconv.FormatFloat(e.Finance.CashflowMonthlyAfterDebt, 'f', 0, 64),
		strconv.FormatFloat(e.Confidence, 'f', 2, 64),
	}
}

func writeDealsCSV(path string, evals []*model.DealEvaluation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create csv %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(dealExportHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, e := range evals {
		if err := w.Write(dealExportRow(e)); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

func writeDealsXLSX(path string, evals []*model.DealEvaluation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Deals")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	row := sheet.AddRow()
	for _, h := range dealExportHeader {
		row.AddCell().SetString(h)
	}
	for _, e := range evals {
		row := sheet.AddRow()
		for _, v := range dealExportRow(e) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrapf(f.Save(path), "save xlsx %s", path)
}

func init() {
	topDealsCmd.Flags().StringVar(&topZipcode, "zip", "", "restrict to a zipcode")
	topDealsCmd.Flags().Float64Var(&topMaxPrice, "max-price", 0, "maximum list price (0 = no cap)")
	topDealsCmd.Flags().IntVar(&topLimit, "limit", 25, "number of deals to show")
	topDealsCmd.Flags().StringVar(&topSaveCSV, "csv", "", "also export results to a CSV file")
	topDealsCmd.Flags().StringVar(&topSaveXLSX, "xlsx", "", "also export results to an XLSX file")
	rootCmd.AddCommand(topDealsCmd)
}
