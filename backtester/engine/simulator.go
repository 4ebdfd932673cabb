package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/holdings"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/signal"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
	"github.com/thrasher-corp/gct-pairs/log"
	"golang.org/x/sync/errgroup"
)

// NewSimulator validates the settings and the price data the run will use
func NewSimulator(s SimulatorSettings, b *data.Bundle) (*Simulator, error) {
	if s.Strategy == nil {
		return nil, errNilStrategy
	}
	if s.Exchange == nil {
		return nil, errNilExchange
	}
	if b == nil {
		return nil, errNilBundle
	}
	if s.Start < 0 || s.Start >= b.Len() {
		return nil, fmt.Errorf("%w: %d of %d bars", errStartOutOfRange, s.Start, b.Len())
	}
	entry, _ := s.Strategy.Thresholds()
	if err := s.Risk.Validate(entry); err != nil {
		return nil, err
	}
	if err := s.Size.Validate(); err != nil {
		return nil, err
	}
	if s.ReestimateInterval < 0 || (s.ReestimateInterval > 0 && s.ReestimateWindow <= 0) {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errInvalidReestimates)
	}
	if s.ReestimateInterval > 0 && s.Cointegration == nil {
		return nil, errNoReestimator
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	if err := validateBundle(b); err != nil {
		return nil, err
	}
	p, err := portfolio.New(s.InitialCash)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		settings:  s,
		bundle:    b,
		portfolio: p,
	}, nil
}

// validateBundle guards the deterministic guarantee of a run
func validateBundle(b *data.Bundle) error {
	times := b.Times()
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return fmt.Errorf("offset %d %w", i, common.ErrNonMonotonicTimestamp)
		}
	}
	for _, id := range b.Instruments() {
		prices, err := b.Prices(id)
		if err != nil {
			return err
		}
		for i := range prices {
			if math.IsNaN(prices[i]) || math.IsInf(prices[i], 0) {
				return fmt.Errorf("%s offset %d %w", id, i, common.ErrNaNPrice)
			}
		}
	}
	return nil
}

// AddPair registers a spread to trade. Its z-score window is pre-seeded
// from formation bars when enabled
func (s *Simulator) AddPair(sp *spread.Spread) error {
	if sp == nil {
		return common.ErrNilArguments
	}
	if s.ran {
		return errSimulationRan
	}
	for i := range s.pairs {
		if s.pairs[i].id == sp.ID() {
			return fmt.Errorf("%w: %s", errDuplicatePair, sp.ID())
		}
	}
	for _, inst := range sp.Instruments() {
		if _, err := s.bundle.Prices(inst); err != nil {
			return err
		}
	}
	tracker, err := spread.NewTracker(sp, s.settings.Strategy.Window())
	if err != nil {
		return err
	}
	r := &pairRunner{
		id:        sp.ID(),
		candidate: data.Candidate{Instruments: sp.Instruments()},
		tracker:   tracker,
	}
	if s.settings.PreSeed {
		if err := r.seed(s.bundle, s.settings.Start-s.settings.Strategy.Window(), s.settings.Start); err != nil {
			return err
		}
	}
	s.pairs = append(s.pairs, r)
	sort.Slice(s.pairs, func(i, j int) bool { return s.pairs[i].id < s.pairs[j].id })
	s.portfolio.AddPair(sp.ID())
	return nil
}

// SetPairThresholds gives one pair its own entry and exit thresholds. The
// pair keeps the run's z-score window so its pre-seeded history stays valid
func (s *Simulator) SetPairThresholds(id string, entry, exit float64) error {
	if s.ran {
		return errSimulationRan
	}
	var r *pairRunner
	for i := range s.pairs {
		if s.pairs[i].id == id {
			r = s.pairs[i]
			break
		}
	}
	if r == nil {
		return fmt.Errorf("%w: %s", errUnknownPair, id)
	}
	if err := s.settings.Risk.Validate(entry); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	strat, err := strategies.LoadStrategyByName(s.settings.Strategy.Name())
	if err != nil {
		return err
	}
	if err := strat.SetCustomSettings(map[string]any{
		"entry-threshold": entry,
		"exit-threshold":  exit,
		"window":          s.settings.Strategy.Window(),
	}); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	r.strategy = strat
	log.Debugf(common.Strategy, "%s trading with entry %v exit %v", id, entry, exit)
	return nil
}

// handler is the strategy deciding this pair's signals
func (r *pairRunner) handler(fallback strategies.Handler) strategies.Handler {
	if r.strategy != nil {
		return r.strategy
	}
	return fallback
}

// seed feeds the bars [from, to) into the tracker without trading them
func (r *pairRunner) seed(b *data.Bundle, from, to int) error {
	for i := max(from, 0); i < to; i++ {
		prices, err := r.tracker.Spread().LegPrices(b, i)
		if err != nil {
			return err
		}
		if _, err := r.tracker.Update(prices); err != nil {
			return err
		}
	}
	return nil
}

// Portfolio returns the portfolio the simulator mutates
func (s *Simulator) Portfolio() *portfolio.Portfolio {
	return s.portfolio
}

// Run processes every bar from the start offset to the end of the data
// once. Any error is fatal for the run
func (s *Simulator) Run() (*portfolio.Portfolio, error) {
	if s.ran {
		return nil, errSimulationRan
	}
	s.ran = true
	times := s.bundle.Times()
	last := s.bundle.Len() - 1
	log.Infof(common.Simulator, "Simulating %d pairs over %d bars", len(s.pairs), last-s.settings.Start+1)
	for offset := s.settings.Start; offset <= last; offset++ {
		if err := s.step(offset, times[offset], offset == last); err != nil {
			return nil, fmt.Errorf("offset %d %v: %w", offset, times[offset], err)
		}
	}
	log.Infof(common.Simulator, "Simulation complete: %d trades, %d rejections, final equity %s",
		len(s.portfolio.Trades()), len(s.portfolio.Rejections()), s.portfolio.Equity().StringFixed(2))
	return s.portfolio, nil
}

// step processes one bar: re-estimate, mark to market, evaluate, close on
// risk triggers, open entries, close on signal exits then record equity
func (s *Simulator) step(offset int, t time.Time, final bool) error {
	if err := s.reestimate(offset); err != nil {
		return err
	}
	for _, r := range s.pairs {
		prices, err := r.tracker.Spread().LegPrices(s.bundle, offset)
		if err != nil {
			return err
		}
		r.prices = prices
		if !s.portfolio.PositionState(r.id).Open {
			continue
		}
		if err := s.portfolio.MarkToMarket(r.id, offset, prices); err != nil {
			return err
		}
	}
	if err := s.evaluate(offset, t); err != nil {
		return err
	}

	for _, r := range s.pairs {
		h, open := s.portfolio.Holding(r.id)
		if !open {
			continue
		}
		riskReason, fired := s.settings.Risk.EvaluateExit(h.Direction, r.obs, h.BarsHeld)
		if !fired {
			continue
		}
		reason, _ := s.settings.Risk.ResolveExit(riskReason, true, r.sig.GetKind() == signal.Exit)
		if err := s.closePosition(r, h, reason, offset, t); err != nil {
			return err
		}
	}
	for _, r := range s.pairs {
		if !r.sig.GetKind().IsEntry() {
			continue
		}
		if final {
			r.sig.SetKind(signal.Hold)
			r.sig.AppendReason("No entries on the final bar")
			continue
		}
		if err := s.enter(r, offset, t); err != nil {
			return err
		}
	}
	for _, r := range s.pairs {
		if r.sig.GetKind() != signal.Exit {
			continue
		}
		h, open := s.portfolio.Holding(r.id)
		if !open {
			continue
		}
		if err := s.closePosition(r, h, order.ExitSignal, offset, t); err != nil {
			return err
		}
	}
	if final {
		for _, r := range s.pairs {
			h, open := s.portfolio.Holding(r.id)
			if !open {
				continue
			}
			if err := s.closePosition(r, h, order.ExitEndOfData, offset, t); err != nil {
				return err
			}
		}
	}
	_, err := s.portfolio.RecordEquity(offset, t)
	return err
}

// evaluate updates every pair's rolling statistics and asks the strategy
// for a signal. Pairs share nothing so they are evaluated concurrently,
// each writing only to its own runner
func (s *Simulator) evaluate(offset int, t time.Time) error {
	var g errgroup.Group
	g.SetLimit(s.settings.Workers)
	for _, r := range s.pairs {
		state := s.portfolio.PositionState(r.id)
		g.Go(func() error {
			obs, err := r.tracker.Update(r.prices)
			if err != nil {
				return fmt.Errorf("%s: %w", r.id, err)
			}
			sig, err := r.handler(s.settings.Strategy).OnSignal(event.Base{Offset: offset, Time: t, PairID: r.id}, obs, state)
			if err != nil {
				return fmt.Errorf("%s: %w", r.id, err)
			}
			r.obs, r.sig = obs, sig
			return nil
		})
	}
	return g.Wait()
}

func (s *Simulator) enter(r *pairRunner, offset int, t time.Time) error {
	if r.suspended {
		return s.reject(r, offset, t, compliance.LimitSuspendedPair, "pair failed its last cointegration re-test")
	}
	weights := r.tracker.Spread().Weights()
	unit := decimal.Zero
	for i := range weights {
		unit = unit.Add(decimal.NewFromFloat(math.Abs(weights[i]) * r.prices[i]))
	}
	quantity, floored, err := s.settings.Size.SizeOrder(s.portfolio.Equity(), r.obs.DeltaStdDev, unit)
	if err != nil {
		return s.reject(r, offset, t, compliance.LimitSizing, err.Error())
	}
	limit, err := s.settings.Risk.EvaluateEntry(s.portfolio.Exposure(), quantity.Mul(unit))
	if err != nil {
		if limit == "" {
			return err
		}
		return s.reject(r, offset, t, limit, err.Error())
	}
	o, err := order.New(r.sig.Base, order.Open, r.sig.GetKind().Direction(), quantity, r.tracker.Spread().Instruments(), weights, r.prices)
	if err != nil {
		return err
	}
	if floored {
		o.AppendReason("Sized at the minimum notional")
	}
	f, err := s.settings.Exchange.ExecuteOrder(o)
	if err != nil {
		return err
	}
	_, err = s.portfolio.OnFill(f, r.obs.ZScore)
	return err
}

func (s *Simulator) closePosition(r *pairRunner, h *holdings.Holding, reason order.ExitReason, offset int, t time.Time) error {
	o, err := order.New(event.Base{Offset: offset, Time: t, PairID: r.id}, order.Close, h.Direction, h.Quantity, h.Instruments, h.Weights, r.prices)
	if err != nil {
		return err
	}
	o.SetExitReason(reason)
	o.AppendReasonf("Closed by %s at z-score %.4f", reason, r.obs.ZScore)
	f, err := s.settings.Exchange.ExecuteOrder(o)
	if err != nil {
		return err
	}
	_, err = s.portfolio.OnFill(f, r.obs.ZScore)
	return err
}

// reject turns an entry signal into a HOLD and records why
func (s *Simulator) reject(r *pairRunner, offset int, t time.Time, limit, reason string) error {
	r.sig.SetKind(signal.Hold)
	r.sig.AppendReason(reason)
	return s.portfolio.Reject(&compliance.Rejection{
		Offset: offset,
		Time:   t,
		Pair:   r.id,
		Limit:  limit,
		Reason: reason,
	})
}

// reestimate re-tests flat pairs on the trailing window at each interval
// boundary. Only bars before the current one are used. A valid re-test
// freezes a new hedge ratio, an invalid one suspends new entries until the
// next boundary
func (s *Simulator) reestimate(offset int) error {
	n := s.settings.ReestimateInterval
	elapsed := offset - s.settings.Start
	if n == 0 || elapsed == 0 || elapsed%n != 0 {
		return nil
	}
	window, err := s.bundle.Window(max(offset-s.settings.ReestimateWindow, 0), offset)
	if err != nil {
		return err
	}
	for _, r := range s.pairs {
		if s.portfolio.PositionState(r.id).Open {
			continue
		}
		res, err := s.settings.Cointegration.Test(window, r.candidate)
		if err != nil {
			if errors.Is(err, common.ErrDataInsufficient) {
				log.Debugf(common.Cointegration, "%s re-test skipped: %v", r.id, err)
				continue
			}
			return err
		}
		if !res.Valid {
			if !r.suspended {
				log.Infof(common.Cointegration, "%s suspended at offset %d: %s", r.id, offset, res.Reason)
			}
			r.suspended = true
			continue
		}
		sp, err := spread.FromResult(res)
		if err != nil {
			return err
		}
		if err := r.tracker.Reset(sp); err != nil {
			return err
		}
		if err := r.seed(s.bundle, offset-s.settings.Strategy.Window(), offset); err != nil {
			return err
		}
		r.suspended = false
		log.Debugf(common.Cointegration, "%s re-estimated at offset %d, hedge ratios %v", r.id, offset, res.HedgeRatios)
	}
	return nil
}
