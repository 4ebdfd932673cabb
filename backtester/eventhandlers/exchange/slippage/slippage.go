package slippage

import (
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

var tenThousand = decimal.NewFromInt(10000)

// ApplyBasisPoints moves price against the side of the trade. Buys pay
// more and sells receive less
func ApplyBasisPoints(price decimal.Decimal, side common.Side, bps decimal.Decimal) decimal.Decimal {
	if bps.IsZero() {
		return price
	}
	adj := price.Mul(bps).Div(tenThousand)
	if side == common.Buy {
		return price.Add(adj)
	}
	return price.Sub(adj)
}
