package portfolio

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/holdings"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/risk"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/fill"
	"github.com/thrasher-corp/gct-pairs/backtester/metrics"
	"github.com/thrasher-corp/gct-pairs/log"
)

// New returns a portfolio holding only cash
func New(initialCash decimal.Decimal) (*Portfolio, error) {
	if !initialCash.IsPositive() {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errInitialCashNotPositive)
	}
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
		peak:        initialCash,
		pairs:       make(map[string]*PairState),
	}, nil
}

// AddPair registers a pair in the Closed state
func (p *Portfolio) AddPair(id string) {
	if _, ok := p.pairs[id]; ok {
		return
	}
	p.pairs[id] = &PairState{Status: Closed}
}

func (p *Portfolio) pair(id string) (*PairState, error) {
	ps, ok := p.pairs[id]
	if !ok {
		return nil, fmt.Errorf("%s %w", id, errPairNotFound)
	}
	return ps, nil
}

// PositionState returns what a strategy needs to know of a pair
func (p *Portfolio) PositionState(id string) base.PositionState {
	ps, ok := p.pairs[id]
	if !ok || ps.Status != Open {
		return base.PositionState{}
	}
	return base.PositionState{Open: true, Direction: ps.Holding.Direction}
}

// Holding returns a copy of a pair's open holding
func (p *Portfolio) Holding(id string) (*holdings.Holding, bool) {
	ps, ok := p.pairs[id]
	if !ok || ps.Status != Open {
		return nil, false
	}
	return ps.Holding.Copy(), true
}

// OpenPairs returns the pairs with an open position in sorted order
func (p *Portfolio) OpenPairs() []string {
	var resp []string
	for id, ps := range p.pairs {
		if ps.Status == Open {
			resp = append(resp, id)
		}
	}
	sort.Strings(resp)
	return resp
}

// OpenPositions returns the number of open positions
func (p *Portfolio) OpenPositions() int {
	var n int
	for _, ps := range p.pairs {
		if ps.Status == Open {
			n++
		}
	}
	return n
}

// MarkToMarket revalues a pair's open holding with the leg prices at offset
func (p *Portfolio) MarkToMarket(id string, offset int, prices []float64) error {
	ps, err := p.pair(id)
	if err != nil {
		return err
	}
	if ps.Status != Open {
		return fmt.Errorf("%s %w", id, errNoOpenPosition)
	}
	return ps.Holding.UpdateValue(offset, prices)
}

// OnFill applies an executed order. Opening fills create a holding and pay
// the fee from cash. Closing fills realise the holding's profit into cash
// and append a trade to the ledger
func (p *Portfolio) OnFill(f *fill.Fill, zScore float64) (*Trade, error) {
	if f == nil {
		return nil, common.ErrNilEvent
	}
	ps, err := p.pair(f.Pair())
	if err != nil {
		return nil, err
	}
	if f.IsOpen() {
		if ps.Status == Open {
			return nil, fmt.Errorf("%s %w", f.Pair(), errPositionAlreadyOpen)
		}
		h, err := holdings.Create(f, zScore)
		if err != nil {
			return nil, err
		}
		p.cash = p.cash.Sub(f.Fee)
		p.addCosts(f)
		ps.Status = Open
		ps.Holding = h
		log.Debugf(common.Simulator, "%s opened %s %s units at spread %s z %.4f",
			f.Pair(), f.Direction, f.Quantity, f.Spread.StringFixed(6), zScore)
		return nil, nil
	}

	if ps.Status != Open {
		return nil, fmt.Errorf("%s %w", f.Pair(), errNoOpenPosition)
	}
	h := ps.Holding
	if h.Direction != f.Direction {
		return nil, fmt.Errorf("%s %w: %s != %s", f.Pair(), errDirectionMismatch, f.Direction, h.Direction)
	}
	gross := h.PnL(f.Spread)
	p.cash = p.cash.Add(gross).Sub(f.Fee)
	p.addCosts(f)
	t := Trade{
		Pair:        h.Pair,
		Direction:   h.Direction,
		Instruments: slices.Clone(h.Instruments),
		Weights:     slices.Clone(h.Weights),
		Quantity:    h.Quantity,
		EntryOffset: h.EntryOffset,
		ExitOffset:  f.GetOffset(),
		EntryTime:   h.EntryTime,
		ExitTime:    f.GetTime(),
		BarsHeld:    f.GetOffset() - h.EntryOffset,
		EntryPrices: slices.Clone(h.EntryPrices),
		ExitPrices:  fill.FillPrices(f.Legs),
		EntrySpread: h.EntrySpread,
		ExitSpread:  f.Spread,
		EntryZScore: h.EntryZScore,
		ExitZScore:  zScore,
		GrossPnL:    gross,
		Fees:        h.EntryFee.Add(f.Fee),
		Slippage:    h.EntrySlippage.Add(f.Slippage),
		ExitReason:  f.ExitReason,
	}
	t.NetPnL = t.GrossPnL.Sub(t.Fees)
	p.trades = append(p.trades, t)
	ps.Status = Closed
	ps.Holding = nil
	metrics.ObserveTrade(string(t.ExitReason))
	log.Debugf(common.Simulator, "%s closed %s by %s after %d bars, net %s",
		t.Pair, t.Direction, t.ExitReason, t.BarsHeld, t.NetPnL.StringFixed(4))
	return &t, nil
}

func (p *Portfolio) addCosts(f *fill.Fill) {
	p.fees = p.fees.Add(f.Fee)
	p.slippage = p.slippage.Add(f.Slippage)
}

// Cash returns the current cash balance
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// InitialCash returns the starting cash balance
func (p *Portfolio) InitialCash() decimal.Decimal {
	return p.initialCash
}

// Unrealised returns the summed unrealised profit of open holdings
func (p *Portfolio) Unrealised() decimal.Decimal {
	total := decimal.Zero
	for _, ps := range p.pairs {
		if ps.Status == Open {
			total = total.Add(ps.Holding.Unrealised)
		}
	}
	return total
}

// Equity is cash plus the mark-to-market of open holdings
func (p *Portfolio) Equity() decimal.Decimal {
	return p.cash.Add(p.Unrealised())
}

// GrossExposure is the summed gross notional of open holdings
func (p *Portfolio) GrossExposure() decimal.Decimal {
	total := decimal.Zero
	for _, ps := range p.pairs {
		if ps.Status == Open {
			total = total.Add(ps.Holding.GrossNotional)
		}
	}
	return total
}

// Drawdown is the fraction current equity sits below its recorded peak
func (p *Portfolio) Drawdown() float64 {
	eq := p.Equity()
	peak := decimal.Max(p.peak, eq)
	if !peak.IsPositive() {
		return 0
	}
	return peak.Sub(eq).Div(peak).InexactFloat64()
}

// Exposure summarises the state entries are judged against
func (p *Portfolio) Exposure() risk.Exposure {
	return risk.Exposure{
		Equity:        p.Equity(),
		GrossOpen:     p.GrossExposure(),
		OpenPositions: p.OpenPositions(),
		Drawdown:      p.Drawdown(),
	}
}

// RecordEquity appends the equity at the end of a bar
func (p *Portfolio) RecordEquity(offset int, t time.Time) (EquityPoint, error) {
	if n := len(p.equityCurve); n > 0 && offset <= p.equityCurve[n-1].Offset {
		return EquityPoint{}, fmt.Errorf("%w: offset %d after %d", errEquityOutOfOrder, offset, p.equityCurve[n-1].Offset)
	}
	unrealised := p.Unrealised()
	e := EquityPoint{
		Offset:        offset,
		Time:          t,
		Cash:          p.cash,
		Unrealised:    unrealised,
		Equity:        p.cash.Add(unrealised),
		GrossExposure: p.GrossExposure(),
		OpenPositions: p.OpenPositions(),
	}
	if e.Equity.GreaterThan(p.peak) {
		p.peak = e.Equity
	}
	p.equityCurve = append(p.equityCurve, e)
	return e, nil
}

// Reject records a denied entry and counts it
func (p *Portfolio) Reject(r *compliance.Rejection) error {
	if err := p.compliance.AddRejection(r); err != nil {
		return err
	}
	metrics.ObserveRejection(r.Limit)
	log.Debugf(common.Risk, "%s entry rejected by %s: %s", r.Pair, r.Limit, r.Reason)
	return nil
}

// Trades returns the ledger in close order
func (p *Portfolio) Trades() []Trade {
	return slices.Clone(p.trades)
}

// EquityCurve returns the recorded equity points
func (p *Portfolio) EquityCurve() []EquityPoint {
	return slices.Clone(p.equityCurve)
}

// Rejections returns the audit trail of denied entries
func (p *Portfolio) Rejections() []compliance.Rejection {
	return p.compliance.GetRejections()
}

// TotalFees returns every fee paid
func (p *Portfolio) TotalFees() decimal.Decimal {
	return p.fees
}

// TotalSlippage returns the slippage cost of every fill
func (p *Portfolio) TotalSlippage() decimal.Decimal {
	return p.slippage
}

// Snapshot captures the full state for serialisation
func (p *Portfolio) Snapshot() *Snapshot {
	s := &Snapshot{
		InitialCash: p.initialCash,
		Cash:        p.cash,
		Peak:        p.peak,
		Fees:        p.fees,
		Slippage:    p.slippage,
		Pairs:       make(map[string]PairState, len(p.pairs)),
		Trades:      p.Trades(),
		EquityCurve: p.EquityCurve(),
		Rejections:  p.Rejections(),
	}
	for id, ps := range p.pairs {
		c := PairState{Status: ps.Status}
		if ps.Holding != nil {
			c.Holding = ps.Holding.Copy()
		}
		s.Pairs[id] = c
	}
	return s
}

// Restore rebuilds a portfolio from a snapshot
func Restore(s *Snapshot) (*Portfolio, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	p, err := New(s.InitialCash)
	if err != nil {
		return nil, err
	}
	p.cash = s.Cash
	p.peak = s.Peak
	p.fees = s.Fees
	p.slippage = s.Slippage
	p.trades = slices.Clone(s.Trades)
	p.equityCurve = slices.Clone(s.EquityCurve)
	p.compliance.Rejections = slices.Clone(s.Rejections)
	for id, ps := range s.Pairs {
		switch {
		case ps.Status == Open && ps.Holding != nil:
			p.pairs[id] = &PairState{Status: Open, Holding: ps.Holding.Copy()}
		case ps.Status == Closed && ps.Holding == nil:
			p.pairs[id] = &PairState{Status: Closed}
		default:
			return nil, fmt.Errorf("%w: pair %s status %q", errInvalidSnapshot, id, ps.Status)
		}
	}
	return p, nil
}
