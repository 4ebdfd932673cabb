package engine

import (
	"errors"
	"time"

	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/config"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics"
)

var (
	errUnknownSource    = errors.New("unknown data source")
	errNoTradingWindow  = errors.New("no bars left to trade after the formation window")
	errPipelineNotReady = errors.New("pipeline has not scanned yet")
)

// Pipeline carries one configured run from price history to a report.
// It scans once and can simulate many times over the same selection
type Pipeline struct {
	cfg           *config.Config
	bundle        *data.Bundle
	cointegration *cointegration.Engine
	scan          *cointegration.ScanReport
	selected      []cointegration.Result
}

// Thresholds are the z-score levels one pair trades at
type Thresholds struct {
	Entry float64 `json:"entry"`
	Exit  float64 `json:"exit"`
}

// Period is a contiguous range of bars
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Bars  int       `json:"bars"`
}

// Report is everything a backtest produces
type Report struct {
	Nickname    string                    `json:"nickname"`
	Formation   Period                    `json:"formation"`
	Trading     Period                    `json:"trading"`
	Scan        *cointegration.ScanReport `json:"scan"`
	Pairs       []string                  `json:"pairs"`
	Statistics  *statistics.Statistic     `json:"statistics"`
	Trades      []portfolio.Trade         `json:"trades"`
	EquityCurve []portfolio.EquityPoint   `json:"equity-curve"`
	Rejections  []compliance.Rejection    `json:"rejections"`
	// PairThresholds lists pairs that traded at their own thresholds
	PairThresholds map[string]Thresholds `json:"pair-thresholds,omitempty"`
}
