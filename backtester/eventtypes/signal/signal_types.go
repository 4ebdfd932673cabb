package signal

import (
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/event"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

// Kind is the action a signal asks for
type Kind string

// Signal kinds, exactly one is emitted per pair per bar
const (
	EnterLongSpread  Kind = "ENTER_LONG_SPREAD"
	EnterShortSpread Kind = "ENTER_SHORT_SPREAD"
	Exit             Kind = "EXIT"
	Hold             Kind = "HOLD"
)

// Signal is the outcome of a strategy's evaluation of one pair at one bar
type Signal struct {
	event.Base
	Kind        Kind               `json:"kind"`
	Observation spread.Observation `json:"observation"`
}
