package size

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	s := Size{TargetVolatility: decimal.NewFromFloat(-0.1)}
	assert.ErrorIs(t, s.Validate(), common.ErrConfigurationInvalid)
	s = Size{}
	assert.ErrorIs(t, s.Validate(), common.ErrConfigurationInvalid)
	s = Size{TargetVolatility: decimal.NewFromFloat(0.01)}
	assert.NoError(t, s.Validate())
}

func TestSizeOrder(t *testing.T) {
	t.Parallel()
	s := Size{
		TargetVolatility: decimal.NewFromFloat(0.01),
		MinimumNotional:  decimal.NewFromInt(100),
	}
	equity := decimal.NewFromInt(100000)

	_, _, err := s.SizeOrder(equity, 1, decimal.Zero)
	assert.ErrorIs(t, err, errZeroUnitNotional)

	q, floored, err := s.SizeOrder(equity, 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.False(t, floored)
	assert.True(t, q.Equal(decimal.NewFromInt(500)), "0.01 * 100000 / 2")

	q, floored, err = s.SizeOrder(equity, 0, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, floored, "zero volatility never sizes to zero")
	assert.True(t, q.Equal(decimal.NewFromInt(2)))

	q, floored, err = s.SizeOrder(decimal.NewFromInt(10), 5, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, floored, "below minimum notional")
	assert.True(t, q.Equal(decimal.NewFromInt(2)))

	noFloor := Size{TargetVolatility: decimal.NewFromFloat(0.01)}
	_, _, err = noFloor.SizeOrder(equity, 0, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, common.ErrRiskLimitExceeded)
	assert.ErrorIs(t, err, errNoFloor)
}
