package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/model"
)

var (
	analyzeInput    string
	analyzeStrategy string
	analyzeSave     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Underwrite a single property from a JSON payload",
	Long:  "Reads a property payload from --input (or stdin with -), runs the full evaluation pipeline, and prints the result as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var r io.Reader
		if analyzeInput == "-" {
			r = cmd.InOrStdin()
		} else {
			f, err := os.Open(analyzeInput)
			if err != nil {
				return eris.Wrapf(err, "open input %s", analyzeInput)
			}
			defer f.Close()
			r = f
		}

		var payload propertyPayload
		if err := json.NewDecoder(r).Decode(&payload); err != nil {
			return eris.Wrap(err, "decode payload")
		}
		if analyzeStrategy != "" {
			payload.Strategy = analyzeStrategy
		}

		prop, err := payload.toPropertyInput()
		if err != nil {
			return eris.Wrap(err, "invalid payload")
		}

		ev, err := initEvaluator()
		if err != nil {
			return err
		}
		eval := ev.Evaluate(ctx, prop)

		if analyzeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			deal, err := st.SaveEvaluation(ctx, eval)
			if err != nil {
				return eris.Wrap(err, "save evaluation")
			}
			zap.L().Info("evaluation saved", zap.String("deal_id", deal.ID))
		}

		return printJSON(cmd.OutOrStdout(), eval)
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

// labelGlyph renders a label for table output.
func labelGlyph(l model.Label) string {
	switch l {
	case model.LabelBuy:
		return "BUY"
	case model.LabelMaybe:
		return "MAYBE"
	default:
		return "PASS"
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "-", "path to JSON payload, or - for stdin")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "override exit strategy (hold|flip)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the evaluation to the deal store")
	rootCmd.AddCommand(analyzeCmd)
}
