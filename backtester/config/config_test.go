package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/risk"
)

const testYAML = `
nickname: test
data:
  source: csv
  path: prices.csv
signal:
  entry-threshold: 2.5
  exit-threshold: 0.25
risk:
  max-leverage: 0
  max-holding-period: 48
  exit-priority: signal
optimiser:
  entry-thresholds: [2]
`

func validConfig(t *testing.T) *Config {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	c.Data.Path = "prices.csv"
	return c
}

func TestDefault(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, c.Data.Source)
	assert.Equal(t, 0.05, c.Cointegration.Significance)
	assert.Equal(t, 500, c.Cointegration.Window)
	assert.Equal(t, 24, c.Signal.Window)
	assert.Equal(t, 2.0, c.Signal.EntryThreshold)
	assert.Equal(t, 0.5, c.Signal.ExitThreshold)
	assert.Equal(t, 3.0, c.Risk.StopLoss)
	assert.Equal(t, 0.001, c.Costs.ProportionalFee)
	assert.Equal(t, 8760.0, c.Statistics.PeriodsPerYear)
	assert.Equal(t, []float64{1.5, 2, 2.5, 3}, c.Optimiser.EntryThresholds)
	assert.True(t, c.Simulation.PreSeed)
	assert.True(t, c.Logging.Enabled)
	assert.ErrorIs(t, c.Validate(), common.ErrConfigurationInvalid, "defaults have no data path")

	c.Data.Path = "prices.csv"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	c, err := LoadConfig([]byte(testYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "test", c.Nickname)
	assert.Equal(t, 2.5, c.Signal.EntryThreshold)
	assert.Equal(t, 0.25, c.Signal.ExitThreshold)
	assert.Equal(t, 24, c.Signal.Window, "unset keys keep their default")
	assert.Zero(t, c.Risk.MaxLeverage, "explicit zero must not be replaced by the default")
	assert.Equal(t, 48, c.Risk.MaxHoldingPeriod)
	assert.Equal(t, []float64{2}, c.Optimiser.EntryThresholds)
	assert.Equal(t, []float64{0.1, 0.5, 1, 1.5}, c.Optimiser.ExitThresholds)

	r := c.RiskSettings()
	assert.Equal(t, risk.PrioritySignal, r.ExitPriority)
	assert.True(t, r.MaxLeverage.IsZero())

	_, err = LoadConfig([]byte(`{"data":{"source":"json","path":"p.json"},"signal":{"window":12}}`), "json")
	require.NoError(t, err)

	_, err = LoadConfig([]byte(testYAML), "toml")
	assert.ErrorIs(t, err, errUnsupportedFormat)
}

func TestReadConfigFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o600))
	c, err := ReadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, c.Signal.EntryThreshold)

	_, err = ReadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PAIRS_DATA_PATH", "env.csv")
	t.Setenv("PAIRS_SIGNAL_ENTRY_THRESHOLD", "2.75")
	t.Setenv("PAIRS_COSTS_SLIPPAGE_BPS", "5")
	c, err := LoadFromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "env.csv", c.Data.Path)
	assert.Equal(t, 2.75, c.Signal.EntryThreshold)
	assert.Equal(t, 5.0, c.Costs.SlippageBasisPoints)
	assert.Equal(t, 0.5, c.Signal.ExitThreshold)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	var nilConfig *Config
	assert.ErrorIs(t, nilConfig.Validate(), errConfigIsNil)

	for _, tc := range []struct {
		name      string
		modify    func(*Config)
		parameter string
	}{
		{"exit at entry", func(c *Config) { c.Signal.ExitThreshold = 2 }, "signal.exit-threshold"},
		{"stop inside entry", func(c *Config) { c.Risk.StopLoss = 1.5 }, "risk.stop-loss"},
		{"unknown source", func(c *Config) { c.Data.Source = "parquet" }, "data.source"},
		{"missing dsn", func(c *Config) { c.Data.Source = SourceSQLite }, "data.dsn"},
		{"bad table", func(c *Config) {
			c.Data.Source, c.Data.DSN, c.Data.Table = SourcePostgres, "postgres://", "prices;drop"
		}, "data.table"},
		{"significance", func(c *Config) { c.Cointegration.Significance = 0.02 }, "cointegration.significance"},
		{"half-life", func(c *Config) { c.Cointegration.MinHalfLife = 300 }, "cointegration.min-half-life"},
		{"window", func(c *Config) { c.Cointegration.Window = 10 }, "cointegration.window"},
		{"z window", func(c *Config) { c.Signal.Window = 1 }, "signal.window"},
		{"drawdown", func(c *Config) { c.Risk.MaxDrawdown = 1 }, "risk.max-drawdown"},
		{"priority", func(c *Config) { c.Risk.ExitPriority = "first" }, "risk.exit-priority"},
		{"cash", func(c *Config) { c.Simulation.InitialCash = 0 }, "simulation.initial-cash"},
		{"grid", func(c *Config) { c.Optimiser.ExitThresholds = nil }, "optimiser.exit-thresholds"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig(t)
			tc.modify(c)
			err := c.Validate()
			assert.ErrorIs(t, err, common.ErrConfigurationInvalid)
			assert.ErrorContains(t, err, tc.parameter)
		})
	}
}

func TestSettingsConversion(t *testing.T) {
	t.Parallel()
	c := validConfig(t)
	cs := c.CointegrationSettings()
	assert.Equal(t, cointegration.Auto, cs.Method)
	assert.Equal(t, cointegration.AIC, cs.LagSelection)
	assert.Equal(t, cointegration.AutoLags, cs.MaxLags)
	assert.NoError(t, cs.Validate())

	es := c.ExchangeSettings()
	assert.Equal(t, "0.001", es.ProportionalFee.String())

	ss := c.SizeSettings()
	assert.Equal(t, "100", ss.MinimumNotional.String())

	st := c.StatisticsSettings()
	assert.Equal(t, c.Signal.Strategy, st.StrategyName)

	custom := c.StrategySettings()
	assert.Equal(t, 2.0, custom["entry-threshold"])
	assert.Equal(t, 24, custom["window"])
}

func TestDataLocation(t *testing.T) {
	t.Parallel()
	c := validConfig(t)
	assert.Equal(t, "prices.csv", c.dataLocation())
	c.Data.Path = ""
	c.Data.DSN = "postgres://user:secret@db:5432/prices"
	assert.Equal(t, "***@db:5432/prices", c.dataLocation())
}
