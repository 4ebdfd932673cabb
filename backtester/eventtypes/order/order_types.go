package order

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
)

// Intent is whether an order opens or closes a position
type Intent string

// ExitReason records what closed a position
type ExitReason string

const (
	// Open a new position
	Open Intent = "OPEN"
	// Close an existing position
	Close Intent = "CLOSE"

	// ExitSignal is the strategy's own reversion exit
	ExitSignal ExitReason = "signal"
	// ExitStopLoss fires when the z-score moves past the stop level
	ExitStopLoss ExitReason = "stop-loss"
	// ExitTimeStop fires when the position reaches its max holding period
	ExitTimeStop ExitReason = "time-stop"
	// ExitEndOfData is the forced liquidation at the end of the time axis
	ExitEndOfData ExitReason = "end-of-data"
)

var (
	errInvalidQuantity  = errors.New("order quantity must be positive")
	errLegCountMismatch = errors.New("instruments, weights and prices must have the same length")
	errInvalidIntent    = errors.New("invalid order intent")
	errMissingExit      = errors.New("close orders require an exit reason")
)

// Leg is one instrument of a spread order
type Leg struct {
	Instrument string          `json:"instrument"`
	Weight     float64         `json:"weight"`
	Side       common.Side     `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Order is a request to trade every leg of a spread at the bar's prices
type Order struct {
	event.Base
	ID         string           `json:"id"`
	Intent     Intent           `json:"intent"`
	Direction  common.Direction `json:"direction"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Legs       []Leg            `json:"legs"`
	ExitReason ExitReason       `json:"exit-reason,omitempty"`
}
