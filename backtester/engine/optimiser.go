package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/gct-pairs/log"
	"golang.org/x/sync/errgroup"
)

var errNoTrials = errors.New("no threshold combination can be run")

// Trial is one point of the threshold grid
type Trial struct {
	EntryThreshold float64         `json:"entry-threshold"`
	ExitThreshold  float64         `json:"exit-threshold"`
	SharpeRatio    float64         `json:"sharpe-ratio"`
	NetProfit      decimal.Decimal `json:"net-profit"`
	MaxDrawdown    float64         `json:"max-drawdown"`
	Trades         int             `json:"trades"`
	WinRate        float64         `json:"win-rate"`
	// Skipped explains why a combination was not run
	Skipped string `json:"skipped,omitempty"`
}

// OptimiserReport ranks every run combination, best first
type OptimiserReport struct {
	Nickname string   `json:"nickname"`
	Pairs    []string `json:"pairs"`
	Best     Trial    `json:"best"`
	Trials   []Trial  `json:"trials"`
	Skipped  []Trial  `json:"skipped,omitempty"`
}

// PairOptimisation is the threshold search of one selected pair
type PairOptimisation struct {
	Pair   string  `json:"pair"`
	Best   Trial   `json:"best"`
	Trials []Trial `json:"trials"`
}

// PairOptimiserReport holds each pair's best thresholds and the portfolio
// backtest run with them
type PairOptimiserReport struct {
	Nickname   string                `json:"nickname"`
	Thresholds map[string]Thresholds `json:"thresholds"`
	Pairs      []PairOptimisation    `json:"pairs"`
	Skipped    []Trial               `json:"skipped,omitempty"`
	Portfolio  *Report               `json:"portfolio"`
}

// grid expands the configured thresholds. Combinations that could never
// make a valid strategy are returned separately with the reason
func (p *Pipeline) grid() (runnable, skipped []Trial) {
	stop := p.cfg.Risk.StopLoss
	for _, entry := range p.cfg.Optimiser.EntryThresholds {
		for _, exit := range p.cfg.Optimiser.ExitThresholds {
			t := Trial{EntryThreshold: entry, ExitThreshold: exit}
			switch {
			case exit >= entry:
				t.Skipped = fmt.Sprintf("exit %v not below entry %v", exit, entry)
			case stop <= entry:
				t.Skipped = fmt.Sprintf("stop-loss %v not beyond entry %v", stop, entry)
			default:
				runnable = append(runnable, t)
				continue
			}
			skipped = append(skipped, t)
		}
	}
	return runnable, skipped
}

// Optimise runs every valid entry and exit threshold combination over the
// same selected pairs. The runs share nothing and execute concurrently. The
// best Sharpe ratio wins, ties go to the lower entry then the lower exit
func (p *Pipeline) Optimise(ctx context.Context) (*OptimiserReport, error) {
	if p.scan == nil {
		if _, err := p.Scan(ctx); err != nil {
			return nil, err
		}
	}
	trials, skipped := p.grid()
	for i := range skipped {
		log.Debugf(common.Optimiser, "Skipping entry %v exit %v: %s", skipped[i].EntryThreshold, skipped[i].ExitThreshold, skipped[i].Skipped)
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("%w: %d combinations skipped", errNoTrials, len(skipped))
	}
	log.Infof(common.Optimiser, "Running %d threshold combinations with %d workers", len(trials), p.cfg.Optimiser.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Optimiser.Workers)
	for i := range trials {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return p.runTrial(p.selected, &trials[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rankTrials(trials)

	resp := &OptimiserReport{
		Nickname: p.cfg.Nickname,
		Pairs:    make([]string, len(p.selected)),
		Best:     trials[0],
		Trials:   trials,
		Skipped:  skipped,
	}
	for i := range p.selected {
		resp.Pairs[i] = p.selected[i].ID
	}
	log.Infof(common.Optimiser, "Best thresholds: entry %v exit %v with sharpe %.4f",
		resp.Best.EntryThreshold, resp.Best.ExitThreshold, resp.Best.SharpeRatio)
	return resp, nil
}

// runTrial simulates the pairs at the trial's thresholds and records the
// resulting performance on it
func (p *Pipeline) runTrial(pairs []cointegration.Result, t *Trial) error {
	pf, err := p.simulate(pairs, t.EntryThreshold, t.ExitThreshold, nil)
	if err != nil {
		return fmt.Errorf("entry %v exit %v: %w", t.EntryThreshold, t.ExitThreshold, err)
	}
	stats, err := statistics.CalculateAllResults(pf, p.cfg.StatisticsSettings())
	if err != nil {
		return fmt.Errorf("entry %v exit %v: %w", t.EntryThreshold, t.ExitThreshold, err)
	}
	t.SharpeRatio = stats.Ratios.SharpeRatio
	t.NetProfit = stats.NetProfit
	t.MaxDrawdown = stats.MaxDrawdown.DrawdownPercent
	t.Trades = stats.TotalTrades
	t.WinRate = stats.WinRate
	log.Debugf(common.Optimiser, "%d pairs entry %v exit %v: sharpe %.4f over %d trades",
		len(pairs), t.EntryThreshold, t.ExitThreshold, t.SharpeRatio, t.Trades)
	return nil
}

// OptimisePerPair searches the threshold grid for every selected pair on
// its own, then backtests the portfolio with each pair trading at its best
// thresholds. Ranking within a pair follows Optimise
func (p *Pipeline) OptimisePerPair(ctx context.Context) (*PairOptimiserReport, error) {
	if p.scan == nil {
		if _, err := p.Scan(ctx); err != nil {
			return nil, err
		}
	}
	grid, skipped := p.grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: %d combinations skipped", errNoTrials, len(skipped))
	}
	log.Infof(common.Optimiser, "Running %d threshold combinations for each of %d pairs", len(grid), len(p.selected))

	results := make([][]Trial, len(p.selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Optimiser.Workers)
	for i := range p.selected {
		results[i] = slices.Clone(grid)
		for j := range results[i] {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := p.runTrial(p.selected[i:i+1], &results[i][j]); err != nil {
					return fmt.Errorf("%s %w", p.selected[i].ID, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &PairOptimiserReport{
		Nickname:   p.cfg.Nickname,
		Thresholds: make(map[string]Thresholds, len(p.selected)),
		Pairs:      make([]PairOptimisation, len(p.selected)),
		Skipped:    skipped,
	}
	for i := range p.selected {
		rankTrials(results[i])
		best := results[i][0]
		id := p.selected[i].ID
		resp.Pairs[i] = PairOptimisation{Pair: id, Best: best, Trials: results[i]}
		resp.Thresholds[id] = Thresholds{Entry: best.EntryThreshold, Exit: best.ExitThreshold}
		log.Infof(common.Optimiser, "%s best thresholds: entry %v exit %v with sharpe %.4f",
			id, best.EntryThreshold, best.ExitThreshold, best.SharpeRatio)
	}
	pf, err := p.SimulatePerPair(resp.Thresholds)
	if err != nil {
		return nil, err
	}
	if resp.Portfolio, err = p.report(pf); err != nil {
		return nil, err
	}
	resp.Portfolio.PairThresholds = resp.Thresholds
	return resp, nil
}

// rankTrials sorts by Sharpe ratio descending, then entry and exit ascending
func rankTrials(trials []Trial) {
	sort.SliceStable(trials, func(i, j int) bool {
		if trials[i].SharpeRatio != trials[j].SharpeRatio {
			return trials[i].SharpeRatio > trials[j].SharpeRatio
		}
		if trials[i].EntryThreshold != trials[j].EntryThreshold {
			return trials[i].EntryThreshold < trials[j].EntryThreshold
		}
		return trials[i].ExitThreshold < trials[j].ExitThreshold
	})
}
