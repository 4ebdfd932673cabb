package slippage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

func TestApplyBasisPoints(t *testing.T) {
	t.Parallel()
	p := decimal.NewFromInt(100)
	assert.True(t, ApplyBasisPoints(p, common.Buy, decimal.Zero).Equal(p))
	assert.True(t, ApplyBasisPoints(p, common.Buy, decimal.NewFromInt(10)).Equal(decimal.NewFromFloat(100.1)))
	assert.True(t, ApplyBasisPoints(p, common.Sell, decimal.NewFromInt(10)).Equal(decimal.NewFromFloat(99.9)))
}
