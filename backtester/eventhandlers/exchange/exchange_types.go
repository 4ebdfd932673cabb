package exchange

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errNegativeFee      = errors.New("fees cannot be negative")
	errNegativeSlippage = errors.New("slippage cannot be negative")
)

// Settings is the cost model applied to every fill
type Settings struct {
	// FixedFee is charged once per fill
	FixedFee decimal.Decimal
	// ProportionalFee is a fraction of the fill's gross notional
	ProportionalFee decimal.Decimal
	// SlippageBasisPoints moves each leg's price against its side
	SlippageBasisPoints decimal.Decimal
}

// Exchange simulates execution of spread orders at bar prices
type Exchange struct {
	settings Settings
}
