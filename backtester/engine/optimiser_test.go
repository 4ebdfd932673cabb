package engine

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
)

func TestGrid(t *testing.T) {
	t.Parallel()
	p := &Pipeline{cfg: testConfig(t, "prices.csv")}
	p.cfg.Risk.StopLoss = 2.5
	p.cfg.Optimiser.EntryThresholds = []float64{1.5, 2, 3}
	p.cfg.Optimiser.ExitThresholds = []float64{0.5, 2}

	runnable, skipped := p.grid()
	require.Len(t, runnable, 2)
	assert.Equal(t, Trial{EntryThreshold: 1.5, ExitThreshold: 0.5}, runnable[0])
	assert.Equal(t, Trial{EntryThreshold: 2, ExitThreshold: 0.5}, runnable[1])
	require.Len(t, skipped, 4)
	for i := range skipped {
		assert.NotEmpty(t, skipped[i].Skipped)
	}
}

func TestRankTrials(t *testing.T) {
	t.Parallel()
	trials := []Trial{
		{EntryThreshold: 3, ExitThreshold: 0.5, SharpeRatio: 1},
		{EntryThreshold: 2, ExitThreshold: 1, SharpeRatio: 1},
		{EntryThreshold: 2, ExitThreshold: 0.5, SharpeRatio: 1},
		{EntryThreshold: 2.5, ExitThreshold: 0.5, SharpeRatio: 1.5},
		{EntryThreshold: 1.5, ExitThreshold: 0.1, SharpeRatio: -0.2},
	}
	rankTrials(trials)
	assert.Equal(t, []Trial{
		{EntryThreshold: 2.5, ExitThreshold: 0.5, SharpeRatio: 1.5},
		{EntryThreshold: 2, ExitThreshold: 0.5, SharpeRatio: 1},
		{EntryThreshold: 2, ExitThreshold: 1, SharpeRatio: 1},
		{EntryThreshold: 3, ExitThreshold: 0.5, SharpeRatio: 1},
		{EntryThreshold: 1.5, ExitThreshold: 0.1, SharpeRatio: -0.2},
	}, trials)
}

func TestOptimise(t *testing.T) {
	t.Parallel()
	p := testPipeline(t)
	p.cfg.Optimiser.EntryThresholds = []float64{1.5, 2}
	p.cfg.Optimiser.ExitThresholds = []float64{0.5, 1.5}

	report, err := p.Optimise(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", report.Nickname)
	assert.Contains(t, report.Pairs, "AAA/BBB")
	require.Len(t, report.Trials, 3)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1.5, report.Skipped[0].EntryThreshold)
	assert.Equal(t, 1.5, report.Skipped[0].ExitThreshold)
	assert.Equal(t, report.Trials[0], report.Best)
	for i := 1; i < len(report.Trials); i++ {
		assert.GreaterOrEqual(t, report.Trials[i-1].SharpeRatio, report.Trials[i].SharpeRatio)
	}

	// the optimiser and a plain backtest agree on the same thresholds
	for _, trial := range report.Trials {
		if trial.EntryThreshold != 2 || trial.ExitThreshold != 0.5 {
			continue
		}
		bt, err := p.Backtest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, bt.Statistics.TotalTrades, trial.Trades)
		assert.True(t, bt.Statistics.NetProfit.Equal(trial.NetProfit))
	}
}

func TestOptimiseNothingToRun(t *testing.T) {
	t.Parallel()
	p := testPipeline(t)
	p.cfg.Optimiser.EntryThresholds = []float64{1}
	p.cfg.Optimiser.ExitThresholds = []float64{1}
	_, err := p.Optimise(context.Background())
	assert.ErrorIs(t, err, errNoTrials)
}

// perPairPipeline trades XXX/BBB and YYY/BBB after ten formation bars.
// Both spreads oscillate then drop to -1.5, a z-score of about -2.26. XXX
// then reverts for a profit while YYY keeps falling into the end of data
func perPairPipeline(t *testing.T) *Pipeline {
	t.Helper()
	osc := append(append([]float64{}, oscillation...), oscillation...)
	x := append(slices.Clone(osc), -1.5, 1)
	y := append(slices.Clone(osc), -1.5, -3)
	xxx, yyy, bbb := make([]float64, len(x)), make([]float64, len(y)), make([]float64, len(x))
	for i := range x {
		xxx[i], yyy[i], bbb[i] = 100+x[i], 100+y[i], 100
	}
	cfg := testConfig(t, "prices.csv")
	cfg.Cointegration.Window = 10
	cfg.Cointegration.MinObservations = 10
	cfg.Signal.Window = 10
	cfg.Costs.ProportionalFee = 0
	cfg.Size.TargetVolatility = 0.001
	cfg.Optimiser.EntryThresholds = []float64{1.5, 2.5}
	cfg.Optimiser.ExitThresholds = []float64{0.5}
	p, err := NewPipeline(cfg, buildBundle(t, map[string][]float64{"XXX": xxx, "YYY": yyy, "BBB": bbb}))
	require.NoError(t, err)
	p.scan = &cointegration.ScanReport{}
	for _, leg := range []string{"XXX", "YYY"} {
		p.selected = append(p.selected, cointegration.Result{
			ID:          leg + "/BBB",
			Candidate:   data.Candidate{Instruments: []string{leg, "BBB"}},
			HedgeRatios: []float64{1},
			Valid:       true,
		})
	}
	return p
}

func TestOptimisePerPair(t *testing.T) {
	t.Parallel()
	p := perPairPipeline(t)
	report, err := p.OptimisePerPair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", report.Nickname)
	assert.Equal(t, map[string]Thresholds{
		"XXX/BBB": {Entry: 1.5, Exit: 0.5},
		"YYY/BBB": {Entry: 2.5, Exit: 0.5},
	}, report.Thresholds, "each pair keeps its own best entry")

	require.Len(t, report.Pairs, 2)
	for _, po := range report.Pairs {
		require.Len(t, po.Trials, 2)
		assert.Equal(t, po.Trials[0], po.Best)
	}
	assert.Positive(t, report.Pairs[0].Best.SharpeRatio)
	assert.Equal(t, 1, report.Pairs[0].Best.Trades)
	assert.Negative(t, report.Pairs[1].Trials[1].SharpeRatio, "entering YYY at 1.5 loses")
	assert.Zero(t, report.Pairs[1].Best.Trades)

	require.NotNil(t, report.Portfolio)
	assert.Equal(t, report.Thresholds, report.Portfolio.PairThresholds)
	require.Len(t, report.Portfolio.Trades, 1)
	assert.Equal(t, "XXX/BBB", report.Portfolio.Trades[0].Pair)
	assert.True(t, report.Portfolio.Trades[0].NetPnL.IsPositive())

	// one shared threshold cannot do both
	for _, entry := range []float64{1.5, 2.5} {
		pf, err := p.Simulate(entry, 0.5)
		require.NoError(t, err)
		assert.NotEqual(t, report.Portfolio.Trades, pf.Trades())
	}
}
