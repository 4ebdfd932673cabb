package signal

import "github.com/thrasher-corp/gct-pairs/backtester/common"

// IsEntry returns whether the kind opens a position
func (k Kind) IsEntry() bool {
	return k == EnterLongSpread || k == EnterShortSpread
}

// Direction returns the spread direction an entry kind opens
func (k Kind) Direction() common.Direction {
	switch k {
	case EnterLongSpread:
		return common.LongSpread
	case EnterShortSpread:
		return common.ShortSpread
	}
	return ""
}

// GetKind returns the signal kind
func (s *Signal) GetKind() Kind {
	return s.Kind
}

// SetKind sets the signal kind
func (s *Signal) SetKind(k Kind) {
	s.Kind = k
}

// ZScore returns the z-score the decision was made on
func (s *Signal) ZScore() float64 {
	return s.Observation.ZScore
}

// IsNil says if the event is nil
func (s *Signal) IsNil() bool {
	return s == nil
}
