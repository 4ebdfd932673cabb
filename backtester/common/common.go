package common

import (
	"errors"
	"fmt"
	"sync"

	"github.com/thrasher-corp/gct-pairs/log"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterBacktesterSubLoggers sets up all custom backtester sub loggers.
// It is safe to call more than once
func RegisterBacktesterSubLoggers() error {
	registerOnce.Do(func() {
		for _, sl := range []struct {
			dst  **log.SubLogger
			name string
		}{
			{&Setup, setupName},
			{&Data, dataName},
			{&Cointegration, cointegrationName},
			{&Strategy, strategyName},
			{&Risk, riskName},
			{&Simulator, simulatorName},
			{&Statistics, statisticsName},
			{&Optimiser, optimiserName},
			{&Server, serverName},
		} {
			l, err := log.NewSubLogger(sl.name)
			if err != nil {
				registerErr = fmt.Errorf("could not register %s sub logger: %w", sl.name, err)
				return
			}
			*sl.dst = l
		}
	})
	return registerErr
}

// AppendError joins a new error onto an existing one
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	return errors.Join(original, incoming)
}

// Sign returns +1 for a long spread and -1 for a short spread
func (d Direction) Sign() float64 {
	switch d {
	case LongSpread:
		return 1
	case ShortSpread:
		return -1
	}
	return 0
}

// IsValid ensures the direction is one the simulator understands
func (d Direction) IsValid() bool {
	return d == LongSpread || d == ShortSpread
}

// LegSide returns the side taken on a leg with the given signed weight when
// opening a position in direction d. Closing uses the opposite side
func (d Direction) LegSide(weight float64, opening bool) Side {
	buy := d.Sign()*weight > 0
	if !opening {
		buy = !buy
	}
	if buy {
		return Buy
	}
	return Sell
}
