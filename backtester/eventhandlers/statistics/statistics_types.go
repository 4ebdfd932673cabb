package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics/pairstatistics"
)

var (
	errNoEquityCurve     = errors.New("no equity curve recorded")
	errInvalidAnnualised = errors.New("periods per year must be positive")
)

// Settings for annualising results
type Settings struct {
	StrategyName   string
	PeriodsPerYear float64
	// RiskFreeRate is an annual rate
	RiskFreeRate float64
}

// Statistic holds all statistical information for a backtester run, from drawdowns to ratios.
// Pair specific information is handled in pairstatistics
type Statistic struct {
	StrategyName   string    `json:"strategy-name"`
	StartDate      time.Time `json:"start-date"`
	EndDate        time.Time `json:"end-date"`
	Bars           int       `json:"bars"`
	PeriodsPerYear float64   `json:"periods-per-year"`
	RiskFreeRate   float64   `json:"risk-free-rate"`

	InitialEquity            decimal.Decimal `json:"initial-equity"`
	FinalEquity              decimal.Decimal `json:"final-equity"`
	NetProfit                decimal.Decimal `json:"net-profit"`
	TotalReturn              float64         `json:"total-return"`
	CompoundAnnualGrowthRate float64         `json:"compound-annual-growth-rate"`
	AnnualisedVolatility     float64         `json:"annualised-volatility"`
	Ratios                   Ratios          `json:"ratios"`
	MaxDrawdown              Swing           `json:"max-drawdown"`

	TotalTrades   int     `json:"total-trades"`
	WinningTrades int     `json:"winning-trades"`
	LosingTrades  int     `json:"losing-trades"`
	WinRate       float64 `json:"win-rate"`
	// ProfitFactor is gross profit over gross loss, nil when nothing was lost
	ProfitFactor    *float64        `json:"profit-factor"`
	AverageBarsHeld float64         `json:"average-bars-held"`
	TotalFees       decimal.Decimal `json:"total-fees"`
	TotalSlippage   decimal.Decimal `json:"total-slippage"`
	ExitReasons     map[string]int  `json:"exit-reasons"`

	Rejections        int            `json:"rejections"`
	RejectionsByLimit map[string]int `json:"rejections-by-limit"`

	PairStatistics []pairstatistics.PairStatistic `json:"pair-statistics"`
}

// Ratios stores all the ratios used for statistics
type Ratios struct {
	SharpeRatio  float64 `json:"sharpe-ratio"`
	SortinoRatio float64 `json:"sortino-ratio"`
	CalmarRatio  float64 `json:"calmar-ratio"`
}

// Swing holds a drawdown
type Swing struct {
	Highest         ValueAtTime     `json:"highest"`
	Lowest          ValueAtTime     `json:"lowest"`
	DrawdownPercent float64         `json:"drawdown"`
	Value           decimal.Decimal `json:"value"`
	// IntervalDuration is the number of bars from peak to trough
	IntervalDuration int `json:"interval-duration"`
}

// ValueAtTime is an individual iteration of equity at a time
type ValueAtTime struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}
