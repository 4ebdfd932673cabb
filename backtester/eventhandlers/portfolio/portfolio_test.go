package portfolio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/fill"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testFill(offset int, intent order.Intent, direction common.Direction, spread, fee int64) *fill.Fill {
	return &fill.Fill{
		Base:      event.Base{Offset: offset, Time: start.Add(time.Duration(offset) * time.Hour), PairID: "A/B"},
		Intent:    intent,
		Direction: direction,
		Quantity:  decimal.NewFromInt(10),
		Legs: []fill.Leg{
			{Instrument: "A", Weight: 1, Quantity: decimal.NewFromInt(10), MarketPrice: decimal.NewFromInt(100), FillPrice: decimal.NewFromInt(100)},
			{Instrument: "B", Weight: -1, Quantity: decimal.NewFromInt(10), MarketPrice: decimal.NewFromInt(100 - spread), FillPrice: decimal.NewFromInt(100 - spread)},
		},
		Spread:       decimal.NewFromInt(spread),
		MarketSpread: decimal.NewFromInt(spread),
		Fee:          decimal.NewFromInt(fee),
	}
}

func assertPrices(t *testing.T, want []int64, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Truef(t, got[i].Equal(decimal.NewFromInt(want[i])), "leg %d price %s", i, got[i])
	}
}

func newPortfolio(t *testing.T) *Portfolio {
	t.Helper()
	p, err := New(decimal.NewFromInt(10000))
	require.NoError(t, err)
	p.AddPair("A/B")
	return p
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(decimal.Zero)
	assert.ErrorIs(t, err, common.ErrConfigurationInvalid)
	p := newPortfolio(t)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(10000)))
	assert.True(t, p.Equity().Equal(p.InitialCash()))
	assert.False(t, p.PositionState("A/B").Open)
	assert.Zero(t, p.OpenPositions())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	_, err := p.OnFill(nil, 0)
	assert.ErrorIs(t, err, common.ErrNilEvent)

	trade, err := p.OnFill(testFill(1, order.Open, common.LongSpread, -5, 2), -2.5)
	require.NoError(t, err)
	assert.Nil(t, trade)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(9998)))
	state := p.PositionState("A/B")
	assert.True(t, state.Open)
	assert.Equal(t, common.LongSpread, state.Direction)
	assert.Equal(t, []string{"A/B"}, p.OpenPairs())

	_, err = p.OnFill(testFill(2, order.Open, common.LongSpread, -5, 0), -2.5)
	assert.ErrorIs(t, err, errPositionAlreadyOpen, "no pair may hold two positions")

	require.NoError(t, p.MarkToMarket("A/B", 2, []float64{100, 103}))
	assert.True(t, p.Equity().Equal(decimal.NewFromInt(10018)), "10 units * (-3 - -5) less fee")
	assert.True(t, p.GrossExposure().Equal(decimal.NewFromInt(2030)))

	exit := testFill(4, order.Close, common.LongSpread, 1, 3)
	exit.ExitReason = order.ExitSignal
	trade, err = p.OnFill(exit, 0.3)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.True(t, trade.GrossPnL.Equal(decimal.NewFromInt(60)))
	assert.True(t, trade.Fees.Equal(decimal.NewFromInt(5)))
	assert.True(t, trade.NetPnL.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, 3, trade.BarsHeld)
	assert.Equal(t, order.ExitSignal, trade.ExitReason)
	assertPrices(t, []int64{100, 105}, trade.EntryPrices)
	assertPrices(t, []int64{100, 99}, trade.ExitPrices)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(10055)))
	assert.True(t, p.Equity().Equal(p.Cash()))
	assert.False(t, p.PositionState("A/B").Open)
	assert.Len(t, p.Trades(), 1)
	assert.True(t, p.TotalFees().Equal(decimal.NewFromInt(5)))

	_, err = p.OnFill(exit, 0)
	assert.ErrorIs(t, err, errNoOpenPosition)
}

func TestShortDirectionMismatch(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	_, err := p.OnFill(testFill(1, order.Open, common.ShortSpread, 5, 0), 2.5)
	require.NoError(t, err)
	exit := testFill(2, order.Close, common.LongSpread, 0, 0)
	_, err = p.OnFill(exit, 0)
	assert.ErrorIs(t, err, errDirectionMismatch)

	exit.Direction = common.ShortSpread
	trade, err := p.OnFill(exit, 0)
	require.NoError(t, err)
	assert.True(t, trade.GrossPnL.Equal(decimal.NewFromInt(50)), "short profits when the spread falls")
}

func TestUnknownPair(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	f := testFill(1, order.Open, common.LongSpread, 0, 0)
	f.PairID = "X/Y"
	_, err := p.OnFill(f, 0)
	assert.ErrorIs(t, err, errPairNotFound)
	assert.ErrorIs(t, p.MarkToMarket("X/Y", 1, nil), errPairNotFound)
	assert.ErrorIs(t, p.MarkToMarket("A/B", 1, nil), errNoOpenPosition)
}

func TestRecordEquity(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	e, err := p.RecordEquity(0, start)
	require.NoError(t, err)
	assert.True(t, e.Equity.Equal(decimal.NewFromInt(10000)))
	_, err = p.RecordEquity(0, start)
	assert.ErrorIs(t, err, errEquityOutOfOrder)

	_, err = p.OnFill(testFill(1, order.Open, common.LongSpread, 0, 0), -2)
	require.NoError(t, err)
	require.NoError(t, p.MarkToMarket("A/B", 1, []float64{100, 110}))
	e, err = p.RecordEquity(1, start.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, e.Equity.Equal(decimal.NewFromInt(9900)))
	assert.Equal(t, 1, e.OpenPositions)
	assert.InDelta(t, 0.01, p.Drawdown(), 1e-12)

	exp := p.Exposure()
	assert.Equal(t, 1, exp.OpenPositions)
	assert.True(t, exp.Equity.Equal(decimal.NewFromInt(9900)))
	assert.Len(t, p.EquityCurve(), 2)
}

func TestReject(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	assert.Error(t, p.Reject(&compliance.Rejection{}))
	require.NoError(t, p.Reject(&compliance.Rejection{Offset: 1, Pair: "A/B", Limit: compliance.LimitLeverage, Reason: "too much"}))
	assert.Len(t, p.Rejections(), 1)
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	p := newPortfolio(t)
	p.AddPair("C/D")
	_, err := p.OnFill(testFill(1, order.Open, common.LongSpread, -5, 1), -2.2)
	require.NoError(t, err)
	_, err = p.RecordEquity(1, start)
	require.NoError(t, err)

	b, err := json.Marshal(p.Snapshot())
	require.NoError(t, err)
	var s Snapshot
	require.NoError(t, json.Unmarshal(b, &s))
	r, err := Restore(&s)
	require.NoError(t, err)

	assert.True(t, r.Cash().Equal(p.Cash()))
	assert.True(t, r.Equity().Equal(p.Equity()))
	assert.Equal(t, p.OpenPairs(), r.OpenPairs())
	h, ok := r.Holding("A/B")
	require.True(t, ok)
	assert.True(t, h.EntrySpread.Equal(decimal.NewFromInt(-5)))
	assert.False(t, r.PositionState("C/D").Open)
	assert.Len(t, r.EquityCurve(), 1)

	s.Pairs["A/B"] = PairState{Status: Open}
	_, err = Restore(&s)
	assert.ErrorIs(t, err, errInvalidSnapshot)
	_, err = Restore(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)
}
