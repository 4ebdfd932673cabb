package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/portfolio/compliance"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

// Validate checks the controls against the strategy's entry threshold
func (r *Risk) Validate(entryThreshold float64) error {
	if r.StopLoss <= entryThreshold {
		return fmt.Errorf("%w: stop-loss %v %w %v", common.ErrConfigurationInvalid, r.StopLoss, errStopInsideEntry, entryThreshold)
	}
	if r.MaxLeverage.IsNegative() {
		return fmt.Errorf("%w: max-leverage %w", common.ErrConfigurationInvalid, errNegativeLimit)
	}
	if r.MaxConcurrentPositions < 0 {
		return fmt.Errorf("%w: max-concurrent-positions %w", common.ErrConfigurationInvalid, errNegativeLimit)
	}
	if r.MaxHoldingPeriod < 0 {
		return fmt.Errorf("%w: max-holding-period %w", common.ErrConfigurationInvalid, errNegativeLimit)
	}
	if r.MaxDrawdown < 0 || r.MaxDrawdown >= 1 {
		return fmt.Errorf("%w: max-drawdown %w", common.ErrConfigurationInvalid, errDrawdownOutOfBand)
	}
	switch r.ExitPriority {
	case PriorityRisk, PrioritySignal:
	default:
		return fmt.Errorf("%w: exit-priority %w %q", common.ErrConfigurationInvalid, errUnknownPriority, r.ExitPriority)
	}
	return nil
}

// EvaluateEntry decides whether a new position with the given gross
// notional may be opened. A denial wraps ErrRiskLimitExceeded and names
// the limit that was hit
func (r *Risk) EvaluateEntry(e Exposure, newGross decimal.Decimal) (string, error) {
	if !e.Equity.IsPositive() {
		return compliance.LimitEquity, fmt.Errorf("%w: equity %s", common.ErrRiskLimitExceeded, e.Equity.StringFixed(2))
	}
	if r.MaxDrawdown > 0 && e.Drawdown >= r.MaxDrawdown {
		return compliance.LimitDrawdown, fmt.Errorf("%w: drawdown %.4f at or beyond limit %v", common.ErrRiskLimitExceeded, e.Drawdown, r.MaxDrawdown)
	}
	if r.MaxConcurrentPositions > 0 && e.OpenPositions >= r.MaxConcurrentPositions {
		return compliance.LimitConcurrent, fmt.Errorf("%w: %d open positions at limit %d", common.ErrRiskLimitExceeded, e.OpenPositions, r.MaxConcurrentPositions)
	}
	if r.MaxLeverage.IsPositive() {
		leverage := e.GrossOpen.Add(newGross).Div(e.Equity)
		if leverage.GreaterThan(r.MaxLeverage) {
			return compliance.LimitLeverage, fmt.Errorf("%w: leverage %s beyond limit %s", common.ErrRiskLimitExceeded, leverage.StringFixed(4), r.MaxLeverage)
		}
	}
	return "", nil
}

// EvaluateExit checks the stop-loss and time-stop of an open position.
// The stop-loss needs a defined z-score, the time-stop fires on the bar
// the holding period is reached
func (r *Risk) EvaluateExit(direction common.Direction, obs spread.Observation, barsHeld int) (order.ExitReason, bool) {
	if obs.Ready {
		switch direction {
		case common.LongSpread:
			if obs.ZScore <= -r.StopLoss {
				return order.ExitStopLoss, true
			}
		case common.ShortSpread:
			if obs.ZScore >= r.StopLoss {
				return order.ExitStopLoss, true
			}
		}
	}
	if r.MaxHoldingPeriod > 0 && barsHeld >= r.MaxHoldingPeriod {
		return order.ExitTimeStop, true
	}
	return "", false
}

// ResolveExit returns the close reason when either source fired
func (r *Risk) ResolveExit(riskReason order.ExitReason, riskFired, signalExit bool) (order.ExitReason, bool) {
	switch {
	case riskFired && signalExit:
		if r.ExitPriority == PrioritySignal {
			return order.ExitSignal, true
		}
		return riskReason, true
	case riskFired:
		return riskReason, true
	case signalExit:
		return order.ExitSignal, true
	}
	return "", false
}
