package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/exchange/slippage"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/fill"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
	"github.com/thrasher-corp/gct-pairs/log"
)

// New validates the cost model and returns an exchange
func New(s Settings) (*Exchange, error) {
	if s.FixedFee.IsNegative() || s.ProportionalFee.IsNegative() {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errNegativeFee)
	}
	if s.SlippageBasisPoints.IsNegative() {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errNegativeSlippage)
	}
	return &Exchange{settings: s}, nil
}

// Settings returns the cost model
func (e *Exchange) Settings() Settings {
	return e.settings
}

// Reset returns the exchange to initial settings
func (e *Exchange) Reset() {
	*e = Exchange{}
}

// ExecuteOrder fills every leg of the order at the bar price adjusted for
// slippage and charges the fee. Orders are always filled in full
func (e *Exchange) ExecuteOrder(o *order.Order) (*fill.Fill, error) {
	if o == nil {
		return nil, common.ErrNilEvent
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	f := &fill.Fill{
		Base:          o.Base,
		OrderID:       o.ID,
		Intent:        o.Intent,
		Direction:     o.Direction,
		Quantity:      o.Quantity,
		ExitReason:    o.ExitReason,
		Legs:          make([]fill.Leg, len(o.Legs)),
		Spread:        decimal.Zero,
		MarketSpread:  decimal.Zero,
		GrossNotional: decimal.Zero,
		Slippage:      decimal.Zero,
	}
	f.Reasons = append([]string(nil), o.Reasons...)
	for i := range o.Legs {
		leg := &o.Legs[i]
		price := slippage.ApplyBasisPoints(leg.Price, leg.Side, e.settings.SlippageBasisPoints)
		cost := price.Sub(leg.Price).Abs().Mul(leg.Quantity)
		f.Legs[i] = fill.Leg{
			Instrument:  leg.Instrument,
			Weight:      leg.Weight,
			Side:        leg.Side,
			Quantity:    leg.Quantity,
			MarketPrice: leg.Price,
			FillPrice:   price,
			Slippage:    cost,
		}
		w := decimal.NewFromFloat(leg.Weight)
		f.Spread = f.Spread.Add(w.Mul(price))
		f.MarketSpread = f.MarketSpread.Add(w.Mul(leg.Price))
		f.GrossNotional = f.GrossNotional.Add(leg.Quantity.Mul(price))
		f.Slippage = f.Slippage.Add(cost)
	}
	f.Fee = e.settings.FixedFee.Add(e.settings.ProportionalFee.Mul(f.GrossNotional))
	if !f.Slippage.IsZero() {
		f.AppendReasonf("slippage %s", f.Slippage.StringFixed(4))
	}
	log.Debugf(common.Simulator, "%s %s %s quantity %s spread %s fee %s",
		f.Pair(), f.Intent, f.Direction, f.Quantity, f.Spread.StringFixed(6), f.Fee.StringFixed(4))
	return f, nil
}
