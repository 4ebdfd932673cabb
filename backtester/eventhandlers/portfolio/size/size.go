package size

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

// Validate checks the sizing settings
func (s *Size) Validate() error {
	if s.TargetVolatility.IsNegative() || s.MinimumNotional.IsNegative() {
		return fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errNegativeSetting)
	}
	if s.TargetVolatility.IsZero() && s.MinimumNotional.IsZero() {
		return fmt.Errorf("%w: target-volatility and minimum-notional cannot both be zero", common.ErrConfigurationInvalid)
	}
	return nil
}

// SizeOrder returns the quantity in spread units so that one standard
// deviation of per bar spread change moves equity by the target fraction.
// unitNotional is the gross notional of one spread unit. Positions that
// would be below the minimum notional, or that cannot be sized for lack of
// volatility, are floored
func (s *Size) SizeOrder(equity decimal.Decimal, deltaStdDev float64, unitNotional decimal.Decimal) (quantity decimal.Decimal, floored bool, err error) {
	if !unitNotional.IsPositive() {
		return decimal.Zero, false, errZeroUnitNotional
	}
	if deltaStdDev > 0 && s.TargetVolatility.IsPositive() {
		quantity = s.TargetVolatility.Mul(equity).Div(decimal.NewFromFloat(deltaStdDev))
	}
	if quantity.Mul(unitNotional).GreaterThanOrEqual(s.MinimumNotional) && quantity.IsPositive() {
		return quantity, false, nil
	}
	if !s.MinimumNotional.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("%w: %w", common.ErrRiskLimitExceeded, errNoFloor)
	}
	return s.MinimumNotional.Div(unitNotional), true, nil
}
