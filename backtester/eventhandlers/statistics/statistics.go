package statistics

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/statistics/pairstatistics"
	gctmath "github.com/thrasher-corp/gct-pairs/common/math"
	"github.com/thrasher-corp/gct-pairs/log"
)

// CalculateAllResults derives the performance of a finished run from its
// ledger and equity curve
func CalculateAllResults(p *portfolio.Portfolio, s Settings) (*Statistic, error) {
	if p == nil {
		return nil, common.ErrNilArguments
	}
	if s.PeriodsPerYear <= 0 {
		return nil, fmt.Errorf("%w: %w", common.ErrConfigurationInvalid, errInvalidAnnualised)
	}
	curve := p.EquityCurve()
	if len(curve) == 0 {
		return nil, errNoEquityCurve
	}
	trades := p.Trades()
	rejections := p.Rejections()

	stat := &Statistic{
		StrategyName:      s.StrategyName,
		StartDate:         curve[0].Time,
		EndDate:           curve[len(curve)-1].Time,
		Bars:              len(curve),
		PeriodsPerYear:    s.PeriodsPerYear,
		RiskFreeRate:      s.RiskFreeRate,
		InitialEquity:     p.InitialCash(),
		FinalEquity:       curve[len(curve)-1].Equity,
		TotalFees:         p.TotalFees(),
		TotalSlippage:     p.TotalSlippage(),
		ExitReasons:       make(map[string]int),
		Rejections:        len(rejections),
		RejectionsByLimit: make(map[string]int),
		PairStatistics:    pairstatistics.Calculate(trades),
	}
	stat.NetProfit = stat.FinalEquity.Sub(stat.InitialEquity)
	stat.TotalReturn = finite(stat.NetProfit.Div(stat.InitialEquity).InexactFloat64())
	for i := range rejections {
		stat.RejectionsByLimit[rejections[i].Limit]++
	}

	equity := make([]float64, len(curve))
	for i := range curve {
		equity[i] = curve[i].Equity.InexactFloat64()
	}
	stat.calculateEquityStatistics(equity, curve)
	stat.calculateTradeStatistics(trades)
	return stat, nil
}

func (s *Statistic) calculateEquityStatistics(equity []float64, curve []portfolio.EquityPoint) {
	initial := s.InitialEquity.InexactFloat64()
	// the run starts from its initial cash, so the first bar's move is a return
	series := make([]float64, 0, len(equity)+1)
	series = append(append(series, initial), equity...)
	cagr, err := gctmath.CalculateCompoundAnnualGrowthRate(initial, series[len(series)-1], s.PeriodsPerYear, float64(len(series)-1))
	if err != nil {
		log.Warnf(common.Statistics, "compound annual growth rate: %v", err)
	}
	s.CompoundAnnualGrowthRate = finite(cagr)

	returns := gctmath.PercentageChanges(series)
	annualiser := math.Sqrt(s.PeriodsPerYear)
	riskFreePerBar := s.RiskFreeRate / s.PeriodsPerYear
	s.AnnualisedVolatility = finite(gctmath.SampleStandardDeviation(returns) * annualiser)
	if sharpe, err := gctmath.CalculateSharpeRatio(returns, riskFreePerBar); err == nil {
		s.Ratios.SharpeRatio = finite(sharpe * annualiser)
	}
	if sortino, err := gctmath.CalculateSortinoRatio(returns, riskFreePerBar); err == nil {
		s.Ratios.SortinoRatio = finite(sortino * annualiser)
	}

	dd := gctmath.MaximumDrawdown(equity)
	s.MaxDrawdown = Swing{
		Highest:          ValueAtTime{Time: curve[dd.PeakIndex].Time, Value: curve[dd.PeakIndex].Equity},
		Lowest:           ValueAtTime{Time: curve[dd.TroughIndex].Time, Value: curve[dd.TroughIndex].Equity},
		DrawdownPercent:  dd.Fraction,
		Value:            curve[dd.PeakIndex].Equity.Sub(curve[dd.TroughIndex].Equity),
		IntervalDuration: dd.TroughIndex - dd.PeakIndex,
	}
	s.Ratios.CalmarRatio = finite(gctmath.CalculateCalmarRatio(s.CompoundAnnualGrowthRate, dd.Fraction))
}

func (s *Statistic) calculateTradeStatistics(trades []portfolio.Trade) {
	s.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	var bars int
	for i := range trades {
		if trades[i].NetPnL.IsPositive() {
			s.WinningTrades++
			grossProfit = grossProfit.Add(trades[i].NetPnL)
		} else {
			s.LosingTrades++
			grossLoss = grossLoss.Add(trades[i].NetPnL.Abs())
		}
		bars += trades[i].BarsHeld
		s.ExitReasons[string(trades[i].ExitReason)]++
	}
	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	s.AverageBarsHeld = float64(bars) / float64(s.TotalTrades)
	if grossLoss.IsPositive() {
		pf := grossProfit.Div(grossLoss).InexactFloat64()
		s.ProfitFactor = &pf
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// PrintTotalResults outputs all results to the log
func (s *Statistic) PrintTotalResults() {
	log.Info(common.Statistics, "------------------Strategy-----------------------------------")
	log.Infof(common.Statistics, "Strategy Name: %v", s.StrategyName)
	log.Infof(common.Statistics, "Period: %v - %v (%d bars)", s.StartDate, s.EndDate, s.Bars)
	log.Info(common.Statistics, "------------------Total Results------------------------------")
	log.Infof(common.Statistics, "Initial equity: %s", s.InitialEquity.StringFixed(2))
	log.Infof(common.Statistics, "Final equity: %s", s.FinalEquity.StringFixed(2))
	log.Infof(common.Statistics, "Total return: %.4f%%", s.TotalReturn*100)
	log.Infof(common.Statistics, "Compound annual growth rate: %.4f%%", s.CompoundAnnualGrowthRate*100)
	log.Infof(common.Statistics, "Annualised volatility: %.4f%%", s.AnnualisedVolatility*100)
	log.Infof(common.Statistics, "Sharpe ratio: %.4f", s.Ratios.SharpeRatio)
	log.Infof(common.Statistics, "Sortino ratio: %.4f", s.Ratios.SortinoRatio)
	log.Infof(common.Statistics, "Calmar ratio: %.4f", s.Ratios.CalmarRatio)
	log.Info(common.Statistics, "------------------Max Drawdown-------------------------------")
	log.Infof(common.Statistics, "Highest: %s at %v", s.MaxDrawdown.Highest.Value.StringFixed(2), s.MaxDrawdown.Highest.Time)
	log.Infof(common.Statistics, "Lowest: %s at %v", s.MaxDrawdown.Lowest.Value.StringFixed(2), s.MaxDrawdown.Lowest.Time)
	log.Infof(common.Statistics, "Calculated Drawdown: %.4f%%", s.MaxDrawdown.DrawdownPercent*100)
	log.Infof(common.Statistics, "Drawdown length: %v bars", s.MaxDrawdown.IntervalDuration)
	log.Info(common.Statistics, "------------------Trades-------------------------------------")
	log.Infof(common.Statistics, "Total trades: %v", s.TotalTrades)
	log.Infof(common.Statistics, "Win rate: %.2f%%", s.WinRate*100)
	if s.ProfitFactor != nil {
		log.Infof(common.Statistics, "Profit factor: %.4f", *s.ProfitFactor)
	}
	log.Infof(common.Statistics, "Average bars held: %.2f", s.AverageBarsHeld)
	log.Infof(common.Statistics, "Total fees: %s", s.TotalFees.StringFixed(4))
	log.Infof(common.Statistics, "Total slippage: %s", s.TotalSlippage.StringFixed(4))
	log.Infof(common.Statistics, "Rejected entries: %v", s.Rejections)
	for i := range s.PairStatistics {
		ps := &s.PairStatistics[i]
		log.Infof(common.Statistics, "%s: %d trades, win rate %.2f%%, net %s",
			ps.Pair, ps.Trades, ps.WinRate*100, ps.NetPnL.StringFixed(2))
	}
}

// Serialise outputs the Statistic struct in json
func (s *Statistic) Serialise() (string, error) {
	resp, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return "", err
	}
	return string(resp), nil
}
