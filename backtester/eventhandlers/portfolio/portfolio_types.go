package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/holdings"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

// Status is the tag of a pair's position state
type Status string

const (
	// Closed pairs hold nothing
	Closed Status = "CLOSED"
	// Open pairs hold exactly one position
	Open Status = "OPEN"
)

var (
	errInitialCashNotPositive = errors.New("initial cash must be positive")
	errPairNotFound           = errors.New("pair not registered with portfolio")
	errPositionAlreadyOpen    = errors.New("pair already has an open position")
	errNoOpenPosition         = errors.New("pair has no open position")
	errEquityOutOfOrder       = errors.New("equity recorded out of order")
	errDirectionMismatch      = errors.New("closing fill direction does not match position")
	errInvalidSnapshot        = errors.New("invalid portfolio snapshot")
)

// PairState is either Closed or Open with its holding
type PairState struct {
	Status  Status            `json:"status"`
	Holding *holdings.Holding `json:"holding,omitempty"`
}

// Trade is one closed position in the ledger
type Trade struct {
	Pair        string           `json:"pair"`
	Direction   common.Direction `json:"direction"`
	Instruments []string         `json:"instruments"`
	Weights     []float64        `json:"weights"`
	Quantity    decimal.Decimal  `json:"quantity"`
	EntryOffset int              `json:"entry-offset"`
	ExitOffset  int              `json:"exit-offset"`
	EntryTime   time.Time        `json:"entry-time"`
	ExitTime    time.Time        `json:"exit-time"`
	BarsHeld    int              `json:"bars-held"`
	// EntryPrices and ExitPrices are per leg fill prices in instrument order
	EntryPrices []decimal.Decimal `json:"entry-prices"`
	ExitPrices  []decimal.Decimal `json:"exit-prices"`
	EntrySpread decimal.Decimal   `json:"entry-spread"`
	ExitSpread  decimal.Decimal   `json:"exit-spread"`
	EntryZScore float64           `json:"entry-z-score"`
	ExitZScore  float64           `json:"exit-z-score"`
	// GrossPnL is measured on fill spreads so it already carries slippage
	GrossPnL   decimal.Decimal  `json:"gross-pnl"`
	Fees       decimal.Decimal  `json:"fees"`
	Slippage   decimal.Decimal  `json:"slippage"`
	NetPnL     decimal.Decimal  `json:"net-pnl"`
	ExitReason order.ExitReason `json:"exit-reason"`
}

// EquityPoint is one entry of the equity curve
type EquityPoint struct {
	Offset        int             `json:"offset"`
	Time          time.Time       `json:"timestamp"`
	Cash          decimal.Decimal `json:"cash"`
	Unrealised    decimal.Decimal `json:"unrealised"`
	Equity        decimal.Decimal `json:"equity"`
	GrossExposure decimal.Decimal `json:"gross-exposure"`
	OpenPositions int             `json:"open-positions"`
}

// Portfolio is the single authority over cash, positions and the ledger.
// It is not safe for concurrent use
type Portfolio struct {
	initialCash decimal.Decimal
	cash        decimal.Decimal
	peak        decimal.Decimal
	fees        decimal.Decimal
	slippage    decimal.Decimal
	pairs       map[string]*PairState
	trades      []Trade
	equityCurve []EquityPoint
	compliance  compliance.Manager
}

// Snapshot is the serialisable state of a portfolio
type Snapshot struct {
	InitialCash decimal.Decimal        `json:"initial-cash"`
	Cash        decimal.Decimal        `json:"cash"`
	Peak        decimal.Decimal        `json:"peak"`
	Fees        decimal.Decimal        `json:"fees"`
	Slippage    decimal.Decimal        `json:"slippage"`
	Pairs       map[string]PairState   `json:"pairs"`
	Trades      []Trade                `json:"trades"`
	EquityCurve []EquityPoint          `json:"equity-curve"`
	Rejections  []compliance.Rejection `json:"rejections"`
}
