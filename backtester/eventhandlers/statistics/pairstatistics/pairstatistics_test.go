package pairstatistics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

func TestCalculate(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Calculate(nil))

	trades := []portfolio.Trade{
		{Pair: "C/D", Direction: common.LongSpread, NetPnL: decimal.NewFromInt(10), GrossPnL: decimal.NewFromInt(12), Fees: decimal.NewFromInt(2), BarsHeld: 4, ExitReason: order.ExitSignal},
		{Pair: "A/B", Direction: common.ShortSpread, NetPnL: decimal.NewFromInt(-5), BarsHeld: 2, ExitReason: order.ExitStopLoss},
		{Pair: "C/D", Direction: common.ShortSpread, NetPnL: decimal.NewFromInt(-3), BarsHeld: 6, ExitReason: order.ExitTimeStop},
		{Pair: "C/D", Direction: common.LongSpread, NetPnL: decimal.NewFromInt(7), BarsHeld: 2, ExitReason: order.ExitSignal},
	}
	resp := Calculate(trades)
	require.Len(t, resp, 2)
	assert.Equal(t, "A/B", resp[0].Pair)
	assert.Equal(t, 1, resp[0].Losses)

	cd := resp[1]
	assert.Equal(t, 3, cd.Trades)
	assert.Equal(t, 2, cd.LongTrades)
	assert.Equal(t, 1, cd.ShortTrades)
	assert.Equal(t, 2, cd.Wins)
	assert.InDelta(t, 2.0/3.0, cd.WinRate, 1e-12)
	assert.InDelta(t, 4.0, cd.AverageBarsHeld, 1e-12)
	assert.True(t, cd.NetPnL.Equal(decimal.NewFromInt(14)))
	assert.True(t, cd.BestTrade.Equal(decimal.NewFromInt(10)))
	assert.True(t, cd.WorstTrade.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, map[string]int{"signal": 2, "time-stop": 1}, cd.ExitReasons)
}
