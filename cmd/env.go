package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/haven-labs/haven-cli/internal/scorer"
	"github.com/haven-labs/haven-cli/internal/store"
	"github.com/haven-labs/haven-cli/internal/underwrite"
)

var policyPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "YAML policy file overriding rule thresholds")
}

// resolveThresholds applies an optional policy file over the config.
func resolveThresholds() (scorer.RulesThresholds, error) {
	if policyPath == "" {
		return cfg.Thresholds, nil
	}
	return scorer.LoadPolicy(policyPath)
}

func initEvaluator() (*underwrite.Evaluator, error) {
	thresholds, err := resolveThresholds()
	if err != nil {
		return nil, err
	}
	return underwrite.NewEvaluator(cfg.Assumptions, thresholds,
		underwrite.WithFlipAssumptions(cfg.Flip),
	)
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "haven.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
