package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "haven-cli",
	Short: "Real-estate deal evaluation and risk-adjusted scoring",
	Long:  "Underwrites residential listings: quantile ARV/rent scenarios, DSCR and cash-on-cash analysis, risk-adjusted ranking, and buy/maybe/pass recommendations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
