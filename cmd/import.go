package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import MLS listings from CSV into the listing store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrapf(err, "open csv %s", importCSVPath)
		}
		defer f.Close()

		listings, skipped, err := parseListingsCSV(f)
		if err != nil {
			return eris.Wrap(err, "parse csv")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		saved, err := st.SaveListings(ctx, listings)
		if err != nil {
			return eris.Wrap(err, "save listings")
		}

		zap.L().Info("import complete",
			zap.Int("saved", saved),
			zap.Int("skipped", skipped),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

// parseListingsCSV reads an MLS export. Rows missing an address, a
// zipcode, or a positive price are counted and skipped, not fatal.
func parseListingsCSV(r io.Reader) ([]model.Listing, int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, eris.Wrap(err, "read header")
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"address", "zipcode", "list_price"} {
		if _, ok := col[required]; !ok {
			return nil, 0, eris.Errorf("missing required column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(rec []string, name string) float64 {
		f, _ := strconv.ParseFloat(field(rec, name), 64)
		return f
	}

	var listings []model.Listing
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, eris.Wrap(err, "read row")
		}

		l := model.Listing{
			Address:      field(rec, "address"),
			City:         field(rec, "city"),
			State:        field(rec, "state"),
			Zipcode:      field(rec, "zipcode"),
			ListPrice:    num(rec, "list_price"),
			Sqft:         num(rec, "sqft"),
			Bedrooms:     num(rec, "bedrooms"),
			Bathrooms:    num(rec, "bathrooms"),
			DaysOnMarket: num(rec, "days_on_market"),
		}
		if yb := num(rec, "year_built"); yb > 0 {
			l.YearBuilt = int(yb)
		}
		if pt := field(rec, "property_type"); pt != "" {
			l.PropertyType = model.PropertyType(pt)
		} else {
			l.PropertyType = model.PropertySingleFamily
		}

		if l.Address == "" || l.Zipcode == "" || l.ListPrice <= 0 {
			skipped++
			continue
		}
		listings = append(listings, l)
	}
	return listings, skipped, nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
