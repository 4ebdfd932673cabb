package event

import (
	"fmt"
	"strings"
	"time"
)

// GetOffset returns the bar offset of the event
func (b *Base) GetOffset() int {
	return b.Offset
}

// SetOffset sets the bar offset
func (b *Base) SetOffset(o int) {
	b.Offset = o
}

// GetTime returns the time
func (b *Base) GetTime() time.Time {
	return b.Time.UTC()
}

// Pair returns the pair identifier
func (b *Base) Pair() string {
	return b.PairID
}

// GetConcatReasons returns the why
func (b *Base) GetConcatReasons() string {
	return strings.Join(b.Reasons, ". ")
}

// GetReasons returns each reason provided
func (b *Base) GetReasons() []string {
	return b.Reasons
}

// AppendReason adds reasoning for a decision being made
func (b *Base) AppendReason(y string) {
	b.Reasons = append(b.Reasons, y)
}

// AppendReasonf adds reasoning for a decision being made
// but with formatting
func (b *Base) AppendReasonf(y string, addons ...any) {
	b.Reasons = append(b.Reasons, fmt.Sprintf(y, addons...))
}
