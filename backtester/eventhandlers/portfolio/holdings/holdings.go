package holdings

import (
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/fill"
)

// Create takes an opening fill and creates a holding for its pair
func Create(f *fill.Fill, zScore float64) (*Holding, error) {
	if f == nil {
		return nil, common.ErrNilEvent
	}
	if !f.IsOpen() {
		return nil, fmt.Errorf("%s %w", f.Pair(), errNotOpeningFill)
	}
	h := &Holding{
		Pair:              f.Pair(),
		Direction:         f.Direction,
		Instruments:       make([]string, len(f.Legs)),
		Weights:           make([]float64, len(f.Legs)),
		EntryPrices:       fill.FillPrices(f.Legs),
		Quantity:          f.Quantity,
		EntryOffset:       f.GetOffset(),
		EntryTime:         f.GetTime(),
		EntrySpread:       f.Spread,
		EntryMarketSpread: f.MarketSpread,
		EntryZScore:       zScore,
		EntryFee:          f.Fee,
		EntrySlippage:     f.Slippage,
		Offset:            f.GetOffset(),
		MarketSpread:      f.MarketSpread,
	}
	gross := decimal.Zero
	for i := range f.Legs {
		h.Instruments[i] = f.Legs[i].Instrument
		h.Weights[i] = f.Legs[i].Weight
		gross = gross.Add(f.Legs[i].Quantity.Mul(f.Legs[i].MarketPrice))
	}
	h.GrossNotional = gross
	h.Unrealised = h.PnL(h.MarketSpread)
	return h, nil
}

// UpdateValue marks the holding to market with leg prices at offset
func (h *Holding) UpdateValue(offset int, prices []float64) error {
	if len(prices) != len(h.Weights) {
		return fmt.Errorf("%s %w: %d prices, %d legs", h.Pair, errPriceMismatch, len(prices), len(h.Weights))
	}
	if offset < h.EntryOffset {
		return fmt.Errorf("%s %w: %d < %d", h.Pair, errStaleOffset, offset, h.EntryOffset)
	}
	spread := decimal.Zero
	gross := decimal.Zero
	for i := range prices {
		if math.IsNaN(prices[i]) || math.IsInf(prices[i], 0) {
			return fmt.Errorf("%s %s %w", h.Pair, h.Instruments[i], common.ErrNaNPrice)
		}
		p := decimal.NewFromFloat(prices[i])
		spread = spread.Add(decimal.NewFromFloat(h.Weights[i]).Mul(p))
		gross = gross.Add(h.Quantity.Mul(decimal.NewFromFloat(math.Abs(h.Weights[i]))).Mul(p))
	}
	h.Offset = offset
	h.BarsHeld = offset - h.EntryOffset
	h.MarketSpread = spread
	h.GrossNotional = gross
	h.Unrealised = h.PnL(spread)
	return nil
}

// PnL returns the profit of closing the holding at the given spread value
func (h *Holding) PnL(exitSpread decimal.Decimal) decimal.Decimal {
	return exitSpread.Sub(h.EntrySpread).Mul(h.Quantity).Mul(decimal.NewFromFloat(h.Direction.Sign()))
}

// Copy returns a deep copy safe to hand outside the portfolio
func (h *Holding) Copy() *Holding {
	c := *h
	c.Instruments = slices.Clone(h.Instruments)
	c.Weights = slices.Clone(h.Weights)
	c.EntryPrices = slices.Clone(h.EntryPrices)
	return &c
}
