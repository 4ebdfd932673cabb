package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/exchange"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/risk"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/size"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/gct-pairs/log"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Default returns a config holding every default value
func Default() (*Config, error) {
	c := new(Config)
	if err := defaults.Set(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadConfigFromFile loads a yaml or json config file, applies environment
// overrides and validates the result
func ReadConfigFromFile(path string) (*Config, error) {
	return load(func(v *viper.Viper) error {
		v.SetConfigFile(filepath.Clean(path))
		return v.ReadInConfig()
	})
}

// LoadConfig parses config contents in the given format, yaml or json
func LoadConfig(contents []byte, format string) (*Config, error) {
	format = strings.ToLower(format)
	switch format {
	case "yaml", "yml", "json":
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
	return load(func(v *viper.Viper) error {
		v.SetConfigType(format)
		return v.ReadConfig(bytes.NewReader(contents))
	})
}

// LoadFromEnvironment builds a config from defaults and PAIRS_ environment
// variables only
func LoadFromEnvironment() (*Config, error) {
	return load(nil)
}

func load(read func(*viper.Viper) error) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if read != nil {
		if err = read(v); err != nil {
			return nil, err
		}
	}
	if err = bindEnvs(v, reflect.TypeOf(*c), ""); err != nil {
		return nil, err
	}
	// decoding into a populated slice keeps trailing default elements
	for key, grid := range map[string]*[]float64{
		"optimiser.entry-thresholds": &c.Optimiser.EntryThresholds,
		"optimiser.exit-thresholds":  &c.Optimiser.ExitThresholds,
	} {
		if v.IsSet(key) {
			*grid = nil
		}
	}
	if err = v.Unmarshal(c); err != nil {
		return nil, err
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// bindEnvs registers every mapstructure key so environment overrides apply
// even when the key is absent from the file
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) error {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			if err := bindEnvs(v, f.Type, key); err != nil {
				return err
			}
			continue
		}
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the struct rules and then the rules that span fields.
// Every error wraps common.ErrConfigurationInvalid and names the parameter
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errConfigIsNil)
	}
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, err)
		}
		var errs error
		for _, fe := range fieldErrs {
			errs = common.AppendError(errs, fmt.Errorf("%w: %s failed %q rule with value %v",
				common.ErrConfigurationInvalid, parameter(fe.Namespace()), fe.Tag(), fe.Value()))
		}
		return errs
	}
	var errs error
	for _, check := range []func() error{
		c.validateData,
		c.validateCointegration,
		c.validateSignal,
		c.validateOptimiser,
	} {
		errs = common.AppendError(errs, check())
	}
	return errs
}

func parameter(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func invalid(param string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrConfigurationInvalid, param, err)
}

func (c *Config) validateData() error {
	switch c.Data.Source {
	case SourceCSV, SourceJSON:
		if c.Data.Path == "" {
			return invalid("data.path", errNoPathForFileSource)
		}
	default:
		if c.Data.DSN == "" {
			return invalid("data.dsn", errNoDSNForSQLSource)
		}
		if err := data.ValidateTableName(c.Data.Table); err != nil {
			return invalid("data.table", err)
		}
	}
	return nil
}

func (c *Config) validateCointegration() error {
	var errs error
	switch c.Cointegration.Significance {
	case 0.01, 0.05, 0.1:
	default:
		errs = common.AppendError(errs, invalid("cointegration.significance", errUnsupportedLevel))
	}
	if c.Cointegration.MinHalfLife >= c.Cointegration.MaxHalfLife {
		errs = common.AppendError(errs, invalid("cointegration.min-half-life", errHalfLifeBounds))
	}
	if c.Cointegration.Window < c.Cointegration.MinObservations {
		errs = common.AppendError(errs, invalid("cointegration.window", errWindowTooShort))
	}
	if errs != nil {
		return errs
	}
	s := c.CointegrationSettings()
	return s.Validate()
}

func (c *Config) validateSignal() error {
	var errs error
	if c.Signal.ExitThreshold >= c.Signal.EntryThreshold {
		errs = common.AppendError(errs, invalid("signal.exit-threshold", errExitNotBelowEntry))
	}
	if c.Risk.StopLoss <= c.Signal.EntryThreshold {
		errs = common.AppendError(errs, invalid("risk.stop-loss", errStopNotBeyondEntry))
	}
	if errs != nil {
		return errs
	}
	r := c.RiskSettings()
	if err := r.Validate(c.Signal.EntryThreshold); err != nil {
		return err
	}
	s := c.SizeSettings()
	return s.Validate()
}

func (c *Config) validateOptimiser() error {
	if len(c.Optimiser.EntryThresholds) == 0 {
		return invalid("optimiser.entry-thresholds", errEmptyGrid)
	}
	if len(c.Optimiser.ExitThresholds) == 0 {
		return invalid("optimiser.exit-thresholds", errEmptyGrid)
	}
	return nil
}

// CointegrationSettings converts the scan section for the cointegration engine
func (c *Config) CointegrationSettings() cointegration.Settings {
	return cointegration.Settings{
		Method:          cointegration.Method(c.Cointegration.Method),
		Significance:    c.Cointegration.Significance,
		MinObservations: c.Cointegration.MinObservations,
		MinHalfLife:     c.Cointegration.MinHalfLife,
		MaxHalfLife:     c.Cointegration.MaxHalfLife,
		LagSelection:    cointegration.LagSelection(c.Cointegration.LagSelection),
		MaxLags:         c.Cointegration.MaxLags,
		CriticalValues:  cointegration.CriticalValueSet(c.Cointegration.CriticalValues),
		JohansenLags:    c.Cointegration.JohansenLags,
		Workers:         c.Cointegration.Workers,
	}
}

// RiskSettings converts the risk section
func (c *Config) RiskSettings() risk.Risk {
	return risk.Risk{
		MaxLeverage:            decimal.NewFromFloat(c.Risk.MaxLeverage),
		MaxConcurrentPositions: c.Risk.MaxConcurrentPositions,
		MaxDrawdown:            c.Risk.MaxDrawdown,
		StopLoss:               c.Risk.StopLoss,
		MaxHoldingPeriod:       c.Risk.MaxHoldingPeriod,
		ExitPriority:           risk.ExitPriority(c.Risk.ExitPriority),
	}
}

// SizeSettings converts the size section
func (c *Config) SizeSettings() size.Size {
	return size.Size{
		TargetVolatility: decimal.NewFromFloat(c.Size.TargetVolatility),
		MinimumNotional:  decimal.NewFromFloat(c.Size.MinimumNotional),
	}
}

// ExchangeSettings converts the cost section
func (c *Config) ExchangeSettings() exchange.Settings {
	return exchange.Settings{
		FixedFee:            decimal.NewFromFloat(c.Costs.FixedFee),
		ProportionalFee:     decimal.NewFromFloat(c.Costs.ProportionalFee),
		SlippageBasisPoints: decimal.NewFromFloat(c.Costs.SlippageBasisPoints),
	}
}

// StatisticsSettings converts the statistics section
func (c *Config) StatisticsSettings() statistics.Settings {
	return statistics.Settings{
		StrategyName:   c.Signal.Strategy,
		PeriodsPerYear: c.Statistics.PeriodsPerYear,
		RiskFreeRate:   c.Statistics.RiskFreeRate,
	}
}

// StrategySettings returns the custom settings map handed to the strategy
func (c *Config) StrategySettings() map[string]any {
	return map[string]any{
		"entry-threshold": c.Signal.EntryThreshold,
		"exit-threshold":  c.Signal.ExitThreshold,
		"window":          c.Signal.Window,
	}
}

// PrintSetting prints relevant settings to the console for easy reading
func (c *Config) PrintSetting() {
	log.Infoln(common.Setup, "-------------------------------------------------------------")
	log.Infof(common.Setup, "Run: %s", c.Nickname)
	log.Infof(common.Setup, "Data: %s (%s) fill limit %d", c.Data.Source, c.dataLocation(), c.Data.FillLimit)
	log.Infof(common.Setup, "Cointegration: %s at %v over %d bars, half-life [%v, %v], %d workers",
		c.Cointegration.Method, c.Cointegration.Significance, c.Cointegration.Window,
		c.Cointegration.MinHalfLife, c.Cointegration.MaxHalfLife, c.Cointegration.Workers)
	log.Infof(common.Setup, "Selection: up to %d candidates of %d instruments", c.Selection.MaxPairs, c.Cointegration.CandidateSize)
	log.Infof(common.Setup, "Strategy: %s window %d entry %v exit %v",
		c.Signal.Strategy, c.Signal.Window, c.Signal.EntryThreshold, c.Signal.ExitThreshold)
	log.Infof(common.Setup, "Risk: stop-loss %v max holding %d max leverage %v max positions %d max drawdown %v priority %s",
		c.Risk.StopLoss, c.Risk.MaxHoldingPeriod, c.Risk.MaxLeverage, c.Risk.MaxConcurrentPositions,
		c.Risk.MaxDrawdown, c.Risk.ExitPriority)
	log.Infof(common.Setup, "Sizing: target volatility %v minimum notional %v", c.Size.TargetVolatility, c.Size.MinimumNotional)
	log.Infof(common.Setup, "Costs: fixed %v proportional %v slippage %v bps",
		c.Costs.FixedFee, c.Costs.ProportionalFee, c.Costs.SlippageBasisPoints)
	log.Infof(common.Setup, "Simulation: initial cash %v re-estimate every %d bars pre-seed %v",
		c.Simulation.InitialCash, c.Simulation.ReestimateInterval, c.Simulation.PreSeed)
	log.Infoln(common.Setup, "-------------------------------------------------------------")
}

func (c *Config) dataLocation() string {
	if c.Data.Path != "" {
		return c.Data.Path
	}
	if c.Data.DSN == "" {
		return ""
	}
	// hide credentials
	if i := strings.LastIndexByte(c.Data.DSN, '@'); i >= 0 {
		return "***" + c.Data.DSN[i:]
	}
	return c.Data.DSN
}
