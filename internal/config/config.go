// Package config loads application configuration from config.yaml and
// the environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/scorer"
	"github.com/haven-labs/haven-cli/internal/valuation"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig                   `yaml:"store" mapstructure:"store"`
	Assumptions model.UnderwritingAssumptions `yaml:"assumptions" mapstructure:"assumptions"`
	Thresholds  scorer.RulesThresholds        `yaml:"thresholds" mapstructure:"thresholds"`
	Flip        valuation.FlipAssumptions     `yaml:"flip" mapstructure:"flip"`
	Screening   model.ScreeningDefaults       `yaml:"screening" mapstructure:"screening"`
	Batch       BatchConfig                   `yaml:"batch" mapstructure:"batch"`
	Server      ServerConfig                  `yaml:"server" mapstructure:"server"`
	Log         LogConfig                     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures batch evaluation.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HAVEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "haven.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("batch.workers", 8)

	v.SetDefault("assumptions.vacancy_rate", 0.05)
	v.SetDefault("assumptions.maintenance_rate", 0.08)
	v.SetDefault("assumptions.property_mgmt_rate", 0.10)
	v.SetDefault("assumptions.capex_rate", 0.05)
	v.SetDefault("assumptions.closing_cost_pct", 0.03)
	v.SetDefault("assumptions.min_dscr_good", 1.25)

	t := scorer.DefaultThresholds()
	v.SetDefault("thresholds.min_dscr_buy", t.MinDSCRBuy)
	v.SetDefault("thresholds.min_coc_buy", t.MinCoCBuy)
	v.SetDefault("thresholds.min_dscr_downside", t.MinDSCRDownside)
	v.SetDefault("thresholds.min_coc_downside", t.MinCoCDownside)
	v.SetDefault("thresholds.min_dscr_maybe", t.MinDSCRMaybe)
	v.SetDefault("thresholds.min_coc_maybe", t.MinCoCMaybe)
	v.SetDefault("thresholds.uncertainty_weight", t.UncertaintyWeight)
	v.SetDefault("thresholds.min_confidence_for_buy", t.MinConfidenceForBuy)
	v.SetDefault("thresholds.arv_low_ratio", t.ARVLowRatio)
	v.SetDefault("thresholds.arv_high_ratio", t.ARVHighRatio)

	f := valuation.DefaultFlipAssumptions()
	v.SetDefault("flip.selling_cost_rate", f.SellingCostRate)
	v.SetDefault("flip.buy_cost_rate", f.BuyCostRate)
	v.SetDefault("flip.desired_profit", f.DesiredProfit)
	v.SetDefault("flip.hold_months", f.HoldMonths)
	v.SetDefault("flip.rehab_contingency", f.RehabContingency)
	v.SetDefault("flip.price_per_sqft", f.PricePerSqft)
	v.SetDefault("flip.market_cap_rate", f.MarketCapRate)

	d := model.DefaultScreeningDefaults()
	v.SetDefault("screening.down_payment_pct", d.DownPaymentPct)
	v.SetDefault("screening.interest_rate_annual", d.InterestRateAnnual)
	v.SetDefault("screening.loan_term_years", d.LoanTermYears)
	v.SetDefault("screening.taxes_annual", d.TaxesAnnual)
	v.SetDefault("screening.insurance_annual", d.InsuranceAnnual)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints the engine depends on.
func (c *Config) Validate() error {
	if err := c.Assumptions.Validate(); err != nil {
		return eris.Wrap(err, "config: assumptions")
	}
	if err := scorer.ValidateThresholds(c.Thresholds); err != nil {
		return eris.Wrap(err, "config: thresholds")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
