package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/config"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/data/clickhouse"
	"github.com/thrasher-corp/gct-pairs/backtester/data/database"
	"github.com/thrasher-corp/gct-pairs/backtester/data/file"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/exchange"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/gct-pairs/backtester/metrics"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
	"github.com/thrasher-corp/gct-pairs/log"
)

// LoadBundle reads the configured price history in full and aligns it onto
// one time axis
func LoadBundle(ctx context.Context, cfg *config.Config) (*data.Bundle, error) {
	if cfg == nil {
		return nil, common.ErrNilArguments
	}
	series, err := loadSeries(ctx, &cfg.Data)
	if err != nil {
		return nil, err
	}
	series, err = data.Select(series, cfg.Data.Instruments)
	if err != nil {
		return nil, err
	}
	b, err := data.Align(cfg.Data.FillLimit, series...)
	if err != nil {
		return nil, err
	}
	log.Infof(common.Data, "Aligned %d instruments over %d bars", len(b.Instruments()), b.Len())
	return b, nil
}

func loadSeries(ctx context.Context, d *config.DataSettings) ([]*data.Series, error) {
	switch d.Source {
	case config.SourceCSV, config.SourceJSON:
		return file.Load(d.Path, d.Source)
	case config.SourceSQLite, config.SourcePostgres:
		driver := database.SQLite3
		if d.Source == config.SourcePostgres {
			driver = database.Postgres
		}
		store, err := database.Open(ctx, driver, d.DSN, d.Table)
		if err != nil {
			return nil, err
		}
		series, err := store.Load(ctx, d.Instruments)
		return series, common.AppendError(err, store.Close())
	case config.SourceClickHouse:
		store, err := clickhouse.Open(ctx, d.DSN, d.Table)
		if err != nil {
			return nil, err
		}
		series, err := store.Load(ctx, d.Instruments)
		return series, common.AppendError(err, store.Close())
	}
	return nil, fmt.Errorf("%w: %q", errUnknownSource, d.Source)
}

// NewPipeline validates the config against the loaded prices
func NewPipeline(cfg *config.Config, b *data.Bundle) (*Pipeline, error) {
	if cfg == nil || b == nil {
		return nil, common.ErrNilArguments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := cointegration.NewEngine(cfg.CointegrationSettings())
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:           cfg,
		bundle:        b,
		cointegration: e,
	}, nil
}

// formationEnd is the first bar after the formation window
func (p *Pipeline) formationEnd() int {
	return min(p.cfg.Cointegration.Window, p.bundle.Len())
}

// Scan tests every candidate on the formation window and keeps the
// strongest valid ones up to the selection limit
func (p *Pipeline) Scan(ctx context.Context) (*cointegration.ScanReport, error) {
	window, err := p.bundle.Window(0, p.formationEnd())
	if err != nil {
		return nil, err
	}
	candidates, err := data.Candidates(p.bundle.Instruments(), p.cfg.Cointegration.CandidateSize)
	if err != nil {
		return nil, err
	}
	report, err := p.cointegration.Scan(ctx, window, candidates)
	if err != nil {
		return nil, err
	}
	p.scan = report
	p.selected = report.Valid()
	if len(p.selected) > p.cfg.Selection.MaxPairs {
		p.selected = p.selected[:p.cfg.Selection.MaxPairs]
	}
	for i := range p.selected {
		log.Infof(common.Cointegration, "Selected %s: hedge ratios %v half-life %.2f strength %.4f",
			p.selected[i].ID, p.selected[i].HedgeRatios, float64(p.selected[i].HalfLife), p.selected[i].Strength)
	}
	if len(p.selected) == 0 {
		log.Warnf(common.Cointegration, "No valid pairs among %d candidates, nothing will be traded", len(candidates))
	}
	return report, nil
}

// Selected returns the pairs the last scan chose to trade
func (p *Pipeline) Selected() []cointegration.Result {
	return p.selected
}

// Simulate runs the selected pairs over the trading window with the given
// thresholds. Each call is independent and safe to run concurrently with
// others once Scan has returned
func (p *Pipeline) Simulate(entry, exit float64) (*portfolio.Portfolio, error) {
	return p.simulate(p.selected, entry, exit, nil)
}

// SimulatePerPair runs the selected pairs with each pair trading at its own
// thresholds. Pairs missing from the map use the configured thresholds
func (p *Pipeline) SimulatePerPair(perPair map[string]Thresholds) (*portfolio.Portfolio, error) {
	return p.simulate(p.selected, p.cfg.Signal.EntryThreshold, p.cfg.Signal.ExitThreshold, perPair)
}

func (p *Pipeline) simulate(pairs []cointegration.Result, entry, exit float64, perPair map[string]Thresholds) (*portfolio.Portfolio, error) {
	if p.scan == nil {
		return nil, errPipelineNotReady
	}
	start := p.cfg.Cointegration.Window
	if start >= p.bundle.Len() {
		return nil, fmt.Errorf("%w: %d formation bars of %d", errNoTradingWindow, start, p.bundle.Len())
	}
	strat, err := strategies.LoadStrategyByName(p.cfg.Signal.Strategy)
	if err != nil {
		return nil, err
	}
	custom := p.cfg.StrategySettings()
	custom["entry-threshold"] = entry
	custom["exit-threshold"] = exit
	if err = strat.SetCustomSettings(custom); err != nil {
		return nil, err
	}
	ex, err := exchange.New(p.cfg.ExchangeSettings())
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulator(SimulatorSettings{
		Strategy:           strat,
		Exchange:           ex,
		Risk:               p.cfg.RiskSettings(),
		Size:               p.cfg.SizeSettings(),
		InitialCash:        decimal.NewFromFloat(p.cfg.Simulation.InitialCash),
		Start:              start,
		PreSeed:            p.cfg.Simulation.PreSeed,
		ReestimateInterval: p.cfg.Simulation.ReestimateInterval,
		ReestimateWindow:   p.cfg.Cointegration.Window,
		Cointegration:      p.cointegration,
		Workers:            p.cfg.Cointegration.Workers,
	}, p.bundle)
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		sp, err := spread.FromResult(&pairs[i])
		if err != nil {
			return nil, err
		}
		if err := sim.AddPair(sp); err != nil {
			return nil, err
		}
		th, ok := perPair[sp.ID()]
		if !ok {
			continue
		}
		if err := sim.SetPairThresholds(sp.ID(), th.Entry, th.Exit); err != nil {
			return nil, err
		}
	}
	return sim.Run()
}

// Backtest scans when needed, simulates with the configured thresholds and
// computes the run's statistics
func (p *Pipeline) Backtest(ctx context.Context) (report *Report, err error) {
	started := time.Now()
	defer func() {
		status := metrics.RunComplete
		if err != nil {
			status = metrics.RunFailed
		}
		metrics.ObserveRun(status, time.Since(started))
	}()
	if p.scan == nil {
		if _, err = p.Scan(ctx); err != nil {
			return nil, err
		}
	}
	pf, err := p.Simulate(p.cfg.Signal.EntryThreshold, p.cfg.Signal.ExitThreshold)
	if err != nil {
		return nil, err
	}
	return p.report(pf)
}

// report summarises a finished portfolio run of the selected pairs
func (p *Pipeline) report(pf *portfolio.Portfolio) (*Report, error) {
	stats, err := statistics.CalculateAllResults(pf, p.cfg.StatisticsSettings())
	if err != nil {
		return nil, err
	}
	report := &Report{
		Nickname:    p.cfg.Nickname,
		Formation:   p.period(0, p.formationEnd()),
		Trading:     p.period(p.cfg.Cointegration.Window, p.bundle.Len()),
		Scan:        p.scan,
		Pairs:       make([]string, len(p.selected)),
		Statistics:  stats,
		Trades:      pf.Trades(),
		EquityCurve: pf.EquityCurve(),
		Rejections:  pf.Rejections(),
	}
	for i := range p.selected {
		report.Pairs[i] = p.selected[i].ID
	}
	return report, nil
}

func (p *Pipeline) period(from, to int) Period {
	times := p.bundle.Times()
	return Period{
		Start: times[from],
		End:   times[to-1],
		Bars:  to - from,
	}
}
