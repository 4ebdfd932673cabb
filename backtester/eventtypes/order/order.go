package order

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
)

// New builds a spread order. quantity is in spread units, leg i trades
// |weights[i]|·quantity at prices[i]
func New(b event.Base, intent Intent, direction common.Direction, quantity decimal.Decimal, instruments []string, weights, prices []float64) (*Order, error) {
	if intent != Open && intent != Close {
		return nil, fmt.Errorf("%w: %q", errInvalidIntent, intent)
	}
	if !direction.IsValid() {
		return nil, fmt.Errorf("%w: direction %q", common.ErrNilArguments, direction)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %v", errInvalidQuantity, quantity)
	}
	if len(instruments) != len(weights) || len(weights) != len(prices) {
		return nil, errLegCountMismatch
	}
	o := &Order{
		Base:      b,
		ID:        fmt.Sprintf("%s-%d-%s", b.PairID, b.Offset, intent),
		Intent:    intent,
		Direction: direction,
		Quantity:  quantity,
		Legs:      make([]Leg, len(instruments)),
	}
	for i := range instruments {
		if math.IsNaN(prices[i]) || math.IsInf(prices[i], 0) {
			return nil, fmt.Errorf("%s %w", instruments[i], common.ErrNaNPrice)
		}
		o.Legs[i] = Leg{
			Instrument: instruments[i],
			Weight:     weights[i],
			Side:       direction.LegSide(weights[i], intent == Open),
			Quantity:   quantity.Mul(decimal.NewFromFloat(math.Abs(weights[i]))),
			Price:      decimal.NewFromFloat(prices[i]),
		}
	}
	return o, nil
}

// SetExitReason marks why a close order was raised
func (o *Order) SetExitReason(r ExitReason) {
	o.ExitReason = r
}

// Validate ensures a close order carries its reason
func (o *Order) Validate() error {
	if o == nil {
		return common.ErrNilEvent
	}
	if o.Intent == Close && o.ExitReason == "" {
		return fmt.Errorf("%s %w", o.ID, errMissingExit)
	}
	return nil
}

// GrossNotional is Σ leg quantity·price at the order's market prices
func (o *Order) GrossNotional() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Legs {
		total = total.Add(o.Legs[i].Quantity.Mul(o.Legs[i].Price))
	}
	return total
}

// IsOpen returns whether the order opens a position
func (o *Order) IsOpen() bool {
	return o.Intent == Open
}
