package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

var (
	errNotOpeningFill = errors.New("holdings can only be created from an opening fill")
	errPriceMismatch  = errors.New("price count does not match holding legs")
	errStaleOffset    = errors.New("offset precedes the holding's entry")
)

// Holding is an open spread position and its latest valuation
type Holding struct {
	Pair        string           `json:"pair"`
	Direction   common.Direction `json:"direction"`
	Instruments []string         `json:"instruments"`
	// Weights are frozen at entry and never follow later hedge ratio changes
	Weights  []float64       `json:"weights"`
	Quantity decimal.Decimal `json:"quantity"`

	EntryOffset       int             `json:"entry-offset"`
	EntryTime         time.Time       `json:"entry-time"`
	EntrySpread       decimal.Decimal `json:"entry-spread"`
	EntryMarketSpread decimal.Decimal `json:"entry-market-spread"`
	// EntryPrices are the per leg fill prices in instrument order
	EntryPrices   []decimal.Decimal `json:"entry-prices"`
	EntryZScore   float64           `json:"entry-z-score"`
	EntryFee      decimal.Decimal   `json:"entry-fee"`
	EntrySlippage decimal.Decimal   `json:"entry-slippage"`

	Offset        int             `json:"offset"`
	BarsHeld      int             `json:"bars-held"`
	MarketSpread  decimal.Decimal `json:"market-spread"`
	GrossNotional decimal.Decimal `json:"gross-notional"`
	Unrealised    decimal.Decimal `json:"unrealised"`
}
