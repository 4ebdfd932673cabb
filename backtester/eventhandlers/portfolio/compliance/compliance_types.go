package compliance

import (
	"errors"
	"time"
)

// Limits that can deny a new position
const (
	LimitLeverage      = "max-leverage"
	LimitConcurrent    = "max-concurrent-positions"
	LimitDrawdown      = "max-drawdown"
	LimitSizing        = "sizing"
	LimitEquity        = "non-positive-equity"
	LimitSuspendedPair = "suspended-pair"
)

var errEmptyRejection = errors.New("rejection requires a pair and a limit")

// Manager is the audit trail of every denied entry
type Manager struct {
	Rejections []Rejection `json:"rejections"`
}

// Rejection records an entry signal that risk controls turned into a HOLD
type Rejection struct {
	Offset int       `json:"offset"`
	Time   time.Time `json:"timestamp"`
	Pair   string    `json:"pair"`
	Limit  string    `json:"limit"`
	Reason string    `json:"reason"`
}
