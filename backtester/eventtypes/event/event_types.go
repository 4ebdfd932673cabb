package event

import "time"

// Base is the underlying event across all actions
type Base struct {
	Offset  int       `json:"offset"`
	Time    time.Time `json:"timestamp"`
	PairID  string    `json:"pair"`
	Reasons []string  `json:"reasons,omitempty"`
}
