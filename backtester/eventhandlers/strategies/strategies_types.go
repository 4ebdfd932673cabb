package strategies

import (
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/signal"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

// Handler defines all functions required to run strategies against data events
type Handler interface {
	Name() string
	Description() string
	OnSignal(event.Base, spread.Observation, base.PositionState) (*signal.Signal, error)
	SetCustomSettings(map[string]any) error
	SetDefaults()
	Thresholds() (entry, exit float64)
	Window() int
}
