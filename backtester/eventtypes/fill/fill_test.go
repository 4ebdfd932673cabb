package fill

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/thrasher-corp/gct-pairs/backtester/eventtypes/order"
)

func TestFill(t *testing.T) {
	t.Parallel()
	var f *Fill
	assert.True(t, f.IsNil())
	f = &Fill{
		Intent:   order.Open,
		Fee:      decimal.NewFromFloat(1.5),
		Slippage: decimal.NewFromFloat(0.25),
	}
	assert.False(t, f.IsNil())
	assert.True(t, f.IsOpen())
	assert.True(t, f.TotalCost().Equal(decimal.NewFromFloat(1.75)))
	f.Intent = order.Close
	assert.False(t, f.IsOpen())
}
