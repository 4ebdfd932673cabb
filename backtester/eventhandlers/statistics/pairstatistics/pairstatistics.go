package pairstatistics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
)

// Calculate groups the ledger by pair. Output is sorted by pair
func Calculate(trades []portfolio.Trade) []PairStatistic {
	lookup := make(map[string]*PairStatistic)
	bars := make(map[string]int)
	for i := range trades {
		t := &trades[i]
		ps, ok := lookup[t.Pair]
		if !ok {
			ps = &PairStatistic{
				Pair:        t.Pair,
				ExitReasons: make(map[string]int),
				BestTrade:   t.NetPnL,
				WorstTrade:  t.NetPnL,
			}
			lookup[t.Pair] = ps
		}
		ps.Trades++
		switch t.Direction {
		case common.LongSpread:
			ps.LongTrades++
		case common.ShortSpread:
			ps.ShortTrades++
		}
		if t.NetPnL.IsPositive() {
			ps.Wins++
		} else {
			ps.Losses++
		}
		ps.GrossPnL = ps.GrossPnL.Add(t.GrossPnL)
		ps.NetPnL = ps.NetPnL.Add(t.NetPnL)
		ps.Fees = ps.Fees.Add(t.Fees)
		ps.Slippage = ps.Slippage.Add(t.Slippage)
		ps.BestTrade = decimal.Max(ps.BestTrade, t.NetPnL)
		ps.WorstTrade = decimal.Min(ps.WorstTrade, t.NetPnL)
		ps.ExitReasons[string(t.ExitReason)]++
		bars[t.Pair] += t.BarsHeld
	}
	resp := make([]PairStatistic, 0, len(lookup))
	for id, ps := range lookup {
		ps.WinRate = float64(ps.Wins) / float64(ps.Trades)
		ps.AverageBarsHeld = float64(bars[id]) / float64(ps.Trades)
		resp = append(resp, *ps)
	}
	sort.Slice(resp, func(i, j int) bool {
		return resp[i].Pair < resp[j].Pair
	})
	return resp
}
