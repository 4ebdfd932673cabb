package engine

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/exchange"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/risk"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/size"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/signal"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

var (
	errNilStrategy        = errors.New("simulator requires a strategy")
	errNilExchange        = errors.New("simulator requires an exchange")
	errNilBundle          = errors.New("simulator requires price data")
	errStartOutOfRange    = errors.New("start offset outside of the data")
	errDuplicatePair      = errors.New("pair added twice")
	errSimulationRan      = errors.New("simulation already ran")
	errNoReestimator      = errors.New("re-estimation needs a cointegration engine")
	errInvalidReestimates = errors.New("re-estimation interval and window must be positive together")
	errUnknownPair        = errors.New("pair not added to the simulation")
)

// SimulatorSettings configure one portfolio run
type SimulatorSettings struct {
	Strategy    strategies.Handler
	Exchange    *exchange.Exchange
	Risk        risk.Risk
	Size        size.Size
	InitialCash decimal.Decimal
	// Start is the first traded bar. Earlier bars are formation history
	Start int
	// PreSeed fills each pair's z-score window from the bars before Start
	PreSeed bool
	// ReestimateInterval re-tests flat pairs every n traded bars on the
	// trailing ReestimateWindow bars, zero disables
	ReestimateInterval int
	ReestimateWindow   int
	Cointegration      *cointegration.Engine
	// Workers bounds concurrent pair evaluation within a bar
	Workers int
}

// Simulator advances a portfolio of spreads through time. It is single
// threaded with respect to the portfolio: per bar signal evaluation may run
// concurrently, applying the signals never does
type Simulator struct {
	settings  SimulatorSettings
	bundle    *data.Bundle
	portfolio *portfolio.Portfolio
	pairs     []*pairRunner
	ran       bool
}

// pairRunner is the per pair state owned by the simulator
type pairRunner struct {
	id        string
	candidate data.Candidate
	tracker   *spread.Tracker
	suspended bool
	// strategy overrides the run's strategy for this pair when set
	strategy strategies.Handler

	// written by the evaluation phase of the current bar
	prices []float64
	obs    spread.Observation
	sig    *signal.Signal
}
