package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ExitPriority decides which close reason wins when a risk trigger and a
// strategy exit fire on the same bar
type ExitPriority string

const (
	// PriorityRisk attributes the close to the risk trigger
	PriorityRisk ExitPriority = "risk"
	// PrioritySignal attributes the close to the strategy exit
	PrioritySignal ExitPriority = "signal"
)

var (
	errStopInsideEntry   = errors.New("stop-loss must be beyond the entry threshold")
	errNegativeLimit     = errors.New("risk limits cannot be negative")
	errUnknownPriority   = errors.New("unknown exit priority")
	errDrawdownOutOfBand = errors.New("max drawdown must be within [0, 1)")
)

// Risk holds the portfolio level controls applied to every pair
type Risk struct {
	// MaxLeverage caps gross exposure over equity, zero disables
	MaxLeverage decimal.Decimal
	// MaxConcurrentPositions caps open pairs, zero disables
	MaxConcurrentPositions int
	// MaxDrawdown blocks new entries once equity falls this fraction
	// below its peak, zero disables
	MaxDrawdown float64
	// StopLoss is the absolute z-score level on the adverse side of entry
	StopLoss float64
	// MaxHoldingPeriod in bars, zero disables
	MaxHoldingPeriod int
	ExitPriority     ExitPriority
}

// Exposure is the portfolio state an entry is judged against
type Exposure struct {
	Equity        decimal.Decimal
	GrossOpen     decimal.Decimal
	OpenPositions int
	Drawdown      float64
}
