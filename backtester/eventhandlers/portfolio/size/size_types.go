package size

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errZeroUnitNotional = errors.New("spread unit notional must be positive")
	errNoFloor          = errors.New("zero spread volatility and no minimum notional")
	errNegativeSetting  = errors.New("sizing settings cannot be negative")
)

// Size turns a signal into a spread quantity
type Size struct {
	// TargetVolatility is the fraction of equity the position should move
	// per bar of spread volatility
	TargetVolatility decimal.Decimal
	// MinimumNotional is the smallest gross notional a position opens with
	MinimumNotional decimal.Decimal
}
