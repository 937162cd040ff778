package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haven-labs/haven-cli/internal/scorer"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "haven.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 10.0, cfg.Server.RatePerSecond, 0.001)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, 8, cfg.Batch.Workers)

	assert.InDelta(t, 0.05, cfg.Assumptions.VacancyRate, 0.001)
	assert.InDelta(t, 0.08, cfg.Assumptions.MaintenanceRate, 0.001)
	assert.InDelta(t, 0.10, cfg.Assumptions.PropertyMgmtRate, 0.001)
	assert.InDelta(t, 0.03, cfg.Assumptions.ClosingCostPct, 0.001)

	assert.Equal(t, scorer.DefaultThresholds(), cfg.Thresholds)

	assert.InDelta(t, 0.25, cfg.Screening.DownPaymentPct, 0.001)
	assert.Equal(t, 30, cfg.Screening.LoanTermYears)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost:5432/haven
log:
  level: debug
  format: console
server:
  port: 9090
thresholds:
  min_dscr_buy: 1.35
  min_coc_buy: 0.12
batch:
  workers: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost:5432/haven", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.Workers)

	// Overridden thresholds take, the rest keep defaults.
	assert.InDelta(t, 1.35, cfg.Thresholds.MinDSCRBuy, 0.001)
	assert.InDelta(t, 0.12, cfg.Thresholds.MinCoCBuy, 0.001)
	assert.InDelta(t, scorer.DefaultThresholds().MinDSCRDownside, cfg.Thresholds.MinDSCRDownside, 0.001)

	// Untouched sections keep defaults.
	assert.InDelta(t, 0.05, cfg.Assumptions.VacancyRate, 0.001)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	yaml := `
store:
  driver: dynamo
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig(t)
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Store.Driver = "mysql"
	require.Error(t, bad.Validate())

	bad = *cfg
	bad.Assumptions.VacancyRate = 1.5
	require.Error(t, bad.Validate())

	bad = *cfg
	bad.Thresholds.MinDSCRBuy = -1
	require.Error(t, bad.Validate())
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
