package zscore

import (
	"fmt"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/signal"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

const (
	// Name is the strategy name
	Name              = "zscore-mean-reversion"
	entryThresholdKey = "entry-threshold"
	exitThresholdKey  = "exit-threshold"
	windowKey         = "window"
	description       = `Trades the reversion of a cointegrated spread to its rolling mean. A spread stretched below the negative entry threshold is bought, one stretched above the positive entry threshold is sold, and the position is closed once the z-score returns inside the exit band or crosses through the mean`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnSignal decides the action for one pair at one bar. It holds no
// per pair state so one instance can evaluate many pairs concurrently
func (s *Strategy) OnSignal(b event.Base, obs spread.Observation, state base.PositionState) (*signal.Signal, error) {
	sig := s.GetBaseSignal(b, obs)
	switch {
	case obs.Flat:
		sig.AppendReason("Flat spread, z-score undefined")
		return sig, nil
	case !obs.Ready:
		sig.AppendReason("Not enough data for signal generation")
		return sig, nil
	}
	entry, exit := s.Thresholds()
	z := obs.ZScore
	if !state.Open {
		switch {
		case z <= -entry:
			sig.SetKind(signal.EnterLongSpread)
			sig.AppendReasonf("Z-score %.4f at or below -%v", z, entry)
		case z >= entry:
			sig.SetKind(signal.EnterShortSpread)
			sig.AppendReasonf("Z-score %.4f at or above %v", z, entry)
		default:
			sig.AppendReasonf("Z-score %.4f inside entry band", z)
		}
		return sig, nil
	}

	switch state.Direction {
	case common.LongSpread:
		if z >= -exit {
			sig.SetKind(signal.Exit)
			if z > exit {
				sig.AppendReasonf("Z-score %.4f crossed through the mean", z)
			} else {
				sig.AppendReasonf("Z-score %.4f reverted inside %v", z, exit)
			}
			return sig, nil
		}
	case common.ShortSpread:
		if z <= exit {
			sig.SetKind(signal.Exit)
			if z < -exit {
				sig.AppendReasonf("Z-score %.4f crossed through the mean", z)
			} else {
				sig.AppendReasonf("Z-score %.4f reverted inside %v", z, exit)
			}
			return sig, nil
		}
	default:
		return nil, fmt.Errorf("%s %w", b.PairID, base.ErrInvalidPositionState)
	}
	sig.AppendReasonf("Z-score %.4f awaiting reversion", z)
	return sig, nil
}

// SetCustomSettings allows a user to modify the thresholds in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	entry, exit := s.Thresholds()
	window := s.Window()
	for k, v := range customSettings {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w provided %s value could not be parsed: %v", base.ErrInvalidCustomSettings, k, v)
		}
		switch k {
		case entryThresholdKey:
			entry = f
		case exitThresholdKey:
			exit = f
		case windowKey:
			window = int(f)
			if float64(window) != f {
				return fmt.Errorf("%w provided %s value must be a whole number: %v", base.ErrInvalidCustomSettings, k, v)
			}
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	if err := s.SetThresholds(entry, exit); err != nil {
		return err
	}
	return s.SetWindow(window)
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	// defaults are valid by construction
	_ = s.SetThresholds(2, 0.5)
	_ = s.SetWindow(24)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
