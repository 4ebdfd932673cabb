package base

import (
	"errors"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

var (
	// ErrStrategyNotFound used when strategy specified in config does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy name is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrInvalidPositionState used when a position is open without a direction
	ErrInvalidPositionState = errors.New("open position has no direction")
)

// PositionState is what a strategy needs to know of a pair's position
type PositionState struct {
	Open      bool
	Direction common.Direction
}

// Strategy holds the thresholds shared by z-score driven strategies
type Strategy struct {
	window         int
	entryThreshold float64
	exitThreshold  float64
}
