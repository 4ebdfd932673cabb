package config

import (
	"errors"

	"github.com/thrasher-corp/gct-pairs/log"
)

// EnvPrefix is prepended to every environment override, eg
// PAIRS_SIGNAL_ENTRY_THRESHOLD
const EnvPrefix = "PAIRS"

// Data sources
const (
	SourceCSV        = "csv"
	SourceJSON       = "json"
	SourceSQLite     = "sqlite"
	SourcePostgres   = "postgres"
	SourceClickHouse = "clickhouse"
)

var (
	errNoPathForFileSource = errors.New("a file source requires a path")
	errNoDSNForSQLSource   = errors.New("a database source requires a dsn")
	errExitNotBelowEntry   = errors.New("exit threshold must be below the entry threshold")
	errStopNotBeyondEntry  = errors.New("stop-loss must be beyond the entry threshold")
	errHalfLifeBounds      = errors.New("minimum half-life must be below the maximum half-life")
	errUnsupportedLevel    = errors.New("significance must be one of 0.01, 0.05 or 0.10")
	errWindowTooShort      = errors.New("cointegration window must cover the minimum observations")
	errEmptyGrid           = errors.New("optimiser grid cannot be empty")
	errConfigIsNil         = errors.New("config is nil")
	errUnsupportedFormat   = errors.New("unsupported config format")
)

// Config is everything a run needs. Field names double as the keys
// accepted in config files and, upper cased with an underscore separator,
// as environment overrides
type Config struct {
	Nickname      string                `json:"nickname" mapstructure:"nickname" default:"pairs"`
	Data          DataSettings          `json:"data" mapstructure:"data"`
	Cointegration CointegrationSettings `json:"cointegration" mapstructure:"cointegration"`
	Selection     SelectionSettings     `json:"selection" mapstructure:"selection"`
	Signal        SignalSettings        `json:"signal" mapstructure:"signal"`
	Risk          RiskSettings          `json:"risk" mapstructure:"risk"`
	Size          SizeSettings          `json:"size" mapstructure:"size"`
	Costs         CostSettings          `json:"costs" mapstructure:"costs"`
	Simulation    SimulationSettings    `json:"simulation" mapstructure:"simulation"`
	Statistics    StatisticsSettings    `json:"statistics" mapstructure:"statistics"`
	Optimiser     OptimiserSettings     `json:"optimiser" mapstructure:"optimiser"`
	Server        ServerSettings        `json:"server" mapstructure:"server"`
	Logging       log.Config            `json:"logging" mapstructure:"logging"`
}

// DataSettings points at the price history
type DataSettings struct {
	Source string `json:"source" mapstructure:"source" default:"csv" validate:"oneof=csv json sqlite postgres clickhouse"`
	// Path is a file for csv and json sources
	Path string `json:"path,omitempty" mapstructure:"path"`
	// DSN is used by the database sources
	DSN   string `json:"dsn,omitempty" mapstructure:"dsn"`
	Table string `json:"table" mapstructure:"table" default:"prices" validate:"required"`
	// Instruments restricts loading to the listed identifiers, empty loads all
	Instruments []string `json:"instruments,omitempty" mapstructure:"instruments" validate:"dive,required"`
	// FillLimit forward fills up to this many consecutive missing bars
	// during alignment, zero drops any timestamp missing an instrument
	FillLimit int `json:"fill-limit" mapstructure:"fill-limit" validate:"gte=0"`
}

// CointegrationSettings drive the scan over the formation window
type CointegrationSettings struct {
	Method       string  `json:"method" mapstructure:"method" default:"auto" validate:"oneof=auto engle-granger johansen"`
	Significance float64 `json:"significance" mapstructure:"significance" default:"0.05" validate:"gt=0,lt=1"`
	// Window is the number of formation bars the scan uses, trading starts
	// on the bar after it
	Window          int     `json:"window" mapstructure:"window" default:"500" validate:"gte=3"`
	MinObservations int     `json:"min-observations" mapstructure:"min-observations" default:"30" validate:"gte=3"`
	MinHalfLife     float64 `json:"min-half-life" mapstructure:"min-half-life" default:"1" validate:"gte=0"`
	MaxHalfLife     float64 `json:"max-half-life" mapstructure:"max-half-life" default:"250" validate:"gt=0"`
	LagSelection    string  `json:"adf-lag-selection" mapstructure:"adf-lag-selection" default:"aic" validate:"oneof=aic bic fixed"`
	// MaxLags of -1 derives the maximum from the sample size
	MaxLags        int    `json:"adf-max-lags" mapstructure:"adf-max-lags" default:"-1" validate:"gte=-1"`
	CriticalValues string `json:"critical-values" mapstructure:"critical-values" default:"engle-granger" validate:"oneof=engle-granger adf"`
	JohansenLags   int    `json:"johansen-lags" mapstructure:"johansen-lags" default:"1" validate:"gte=0"`
	// CandidateSize is the number of instruments per candidate, 2 for pairs
	CandidateSize int `json:"candidate-size" mapstructure:"candidate-size" default:"2" validate:"gte=2,lte=6"`
	Workers       int `json:"workers" mapstructure:"workers" default:"4" validate:"gte=1"`
}

// SelectionSettings decide which valid candidates are traded
type SelectionSettings struct {
	MaxPairs int `json:"max-pairs" mapstructure:"max-pairs" default:"5" validate:"gte=1"`
}

// SignalSettings configure the strategy
type SignalSettings struct {
	Strategy       string  `json:"strategy" mapstructure:"strategy" default:"zscore-mean-reversion" validate:"required"`
	Window         int     `json:"window" mapstructure:"window" default:"24" validate:"gte=2"`
	EntryThreshold float64 `json:"entry-threshold" mapstructure:"entry-threshold" default:"2" validate:"gt=0"`
	ExitThreshold  float64 `json:"exit-threshold" mapstructure:"exit-threshold" default:"0.5" validate:"gte=0"`
}

// RiskSettings are the portfolio level controls. Zero disables a cap
type RiskSettings struct {
	StopLoss               float64 `json:"stop-loss" mapstructure:"stop-loss" default:"3" validate:"gt=0"`
	MaxHoldingPeriod       int     `json:"max-holding-period" mapstructure:"max-holding-period" validate:"gte=0"`
	MaxLeverage            float64 `json:"max-leverage" mapstructure:"max-leverage" default:"2" validate:"gte=0"`
	MaxConcurrentPositions int     `json:"max-concurrent-positions" mapstructure:"max-concurrent-positions" default:"5" validate:"gte=0"`
	MaxDrawdown            float64 `json:"max-drawdown" mapstructure:"max-drawdown" validate:"gte=0,lt=1"`
	ExitPriority           string  `json:"exit-priority" mapstructure:"exit-priority" default:"risk" validate:"oneof=risk signal"`
}

// SizeSettings configure volatility targeting
type SizeSettings struct {
	TargetVolatility float64 `json:"target-volatility" mapstructure:"target-volatility" default:"0.01" validate:"gte=0"`
	MinimumNotional  float64 `json:"minimum-notional" mapstructure:"minimum-notional" default:"100" validate:"gte=0"`
}

// CostSettings are charged on every fill
type CostSettings struct {
	FixedFee            float64 `json:"fixed-fee" mapstructure:"fixed-fee" validate:"gte=0"`
	ProportionalFee     float64 `json:"proportional-fee" mapstructure:"proportional-fee" default:"0.001" validate:"gte=0,lt=1"`
	SlippageBasisPoints float64 `json:"slippage-bps" mapstructure:"slippage-bps" validate:"gte=0,lt=10000"`
}

// SimulationSettings control the simulator
type SimulationSettings struct {
	InitialCash float64 `json:"initial-cash" mapstructure:"initial-cash" default:"100000" validate:"gt=0"`
	// ReestimateInterval re-tests flat pairs every n bars, zero disables
	ReestimateInterval int `json:"reestimate-interval" mapstructure:"reestimate-interval" validate:"gte=0"`
	// PreSeed fills the z-score window from formation bars
	PreSeed bool `json:"pre-seed" mapstructure:"pre-seed" default:"true"`
}

// StatisticsSettings control the performance summary
type StatisticsSettings struct {
	PeriodsPerYear float64 `json:"periods-per-year" mapstructure:"periods-per-year" default:"8760" validate:"gt=0"`
	RiskFreeRate   float64 `json:"risk-free-rate" mapstructure:"risk-free-rate" validate:"gte=0"`
}

// OptimiserSettings is the threshold grid searched by the optimise command
type OptimiserSettings struct {
	EntryThresholds []float64 `json:"entry-thresholds" mapstructure:"entry-thresholds" default:"[1.5,2,2.5,3]" validate:"dive,gt=0"`
	ExitThresholds  []float64 `json:"exit-thresholds" mapstructure:"exit-thresholds" default:"[0.1,0.5,1,1.5]" validate:"dive,gte=0"`
	Workers         int       `json:"workers" mapstructure:"workers" default:"4" validate:"gte=1"`
}

// ServerSettings configure the status server
type ServerSettings struct {
	ListenAddress string `json:"listen-address" mapstructure:"listen-address" default:"localhost:9052" validate:"required,hostname_port"`
}
