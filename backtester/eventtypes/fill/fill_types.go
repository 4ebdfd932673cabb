package fill

import (
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

// Leg is the executed detail of one instrument
type Leg struct {
	Instrument  string          `json:"instrument"`
	Weight      float64         `json:"weight"`
	Side        common.Side     `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	MarketPrice decimal.Decimal `json:"market-price"`
	FillPrice   decimal.Decimal `json:"fill-price"`
	// Slippage is the cost of the difference between market and fill price
	Slippage decimal.Decimal `json:"slippage"`
}

// Fill is an event that details the events from placing an order
type Fill struct {
	event.Base
	OrderID    string           `json:"order-id"`
	Intent     order.Intent     `json:"intent"`
	Direction  common.Direction `json:"direction"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Legs       []Leg            `json:"legs"`
	ExitReason order.ExitReason `json:"exit-reason,omitempty"`
	// Spread is the spread value implied by the fill prices
	Spread decimal.Decimal `json:"spread"`
	// MarketSpread is the spread value at market prices
	MarketSpread  decimal.Decimal `json:"market-spread"`
	GrossNotional decimal.Decimal `json:"gross-notional"`
	Fee           decimal.Decimal `json:"fee"`
	Slippage      decimal.Decimal `json:"slippage"`
}
