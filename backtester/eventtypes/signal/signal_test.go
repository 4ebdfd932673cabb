package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/spread"
)

func TestKind(t *testing.T) {
	t.Parallel()
	assert.True(t, EnterLongSpread.IsEntry())
	assert.True(t, EnterShortSpread.IsEntry())
	assert.False(t, Exit.IsEntry())
	assert.False(t, Hold.IsEntry())
	assert.Equal(t, common.LongSpread, EnterLongSpread.Direction())
	assert.Equal(t, common.ShortSpread, EnterShortSpread.Direction())
	assert.Empty(t, Hold.Direction())
}

func TestSignal(t *testing.T) {
	t.Parallel()
	var s *Signal
	assert.True(t, s.IsNil())
	s = &Signal{Kind: Hold, Observation: spread.Observation{ZScore: -2.5}}
	assert.False(t, s.IsNil())
	s.SetKind(EnterLongSpread)
	assert.Equal(t, EnterLongSpread, s.GetKind())
	assert.Equal(t, -2.5, s.ZScore())
}
