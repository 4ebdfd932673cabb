package base

import (
	"fmt"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/signal"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

// GetBaseSignal returns a HOLD signal for the bar, strategies then decide
// whether to change it
func (s *Strategy) GetBaseSignal(b event.Base, obs spread.Observation) *signal.Signal {
	b.Reasons = nil
	return &signal.Signal{
		Base:        b,
		Kind:        signal.Hold,
		Observation: obs,
	}
}

// SetThresholds sets the entry and exit z-score levels. The exit must sit
// inside the entry band
func (s *Strategy) SetThresholds(entry, exit float64) error {
	if entry <= 0 {
		return fmt.Errorf("%w %w: entry-threshold %v must be positive", ErrInvalidCustomSettings, common.ErrConfigurationInvalid, entry)
	}
	if exit < 0 || exit >= entry {
		return fmt.Errorf("%w %w: exit-threshold %v must be within [0, %v)", ErrInvalidCustomSettings, common.ErrConfigurationInvalid, exit, entry)
	}
	s.entryThreshold = entry
	s.exitThreshold = exit
	return nil
}

// Thresholds returns the entry and exit z-score levels
func (s *Strategy) Thresholds() (entry, exit float64) {
	return s.entryThreshold, s.exitThreshold
}

// SetWindow sets the rolling z-score window
func (s *Strategy) SetWindow(w int) error {
	if w < 2 {
		return fmt.Errorf("%w %w: window %v must be at least 2", ErrInvalidCustomSettings, common.ErrConfigurationInvalid, w)
	}
	s.window = w
	return nil
}

// Window returns the rolling z-score window
func (s *Strategy) Window() int {
	return s.window
}
