package fill

import (
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

// TotalCost returns the fee and slippage paid on the fill
func (f *Fill) TotalCost() decimal.Decimal {
	return f.Fee.Add(f.Slippage)
}

// IsOpen returns whether the fill opened a position
func (f *Fill) IsOpen() bool {
	return f.Intent == order.Open
}

// IsNil says if the event is nil
func (f *Fill) IsNil() bool {
	return f == nil
}

// FillPrices returns the executed price of each leg in order
func FillPrices(legs []Leg) []decimal.Decimal {
	resp := make([]decimal.Decimal, len(legs))
	for i := range legs {
		resp[i] = legs[i].FillPrice
	}
	return resp
}
