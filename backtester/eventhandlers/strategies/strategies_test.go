package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/zscore"
)

func TestGetStrategies(t *testing.T) {
	t.Parallel()
	resp := GetStrategies()
	require.NotEmpty(t, resp)
	for i := range resp {
		assert.NotEmpty(t, resp[i].Name())
		assert.NotEmpty(t, resp[i].Description())
	}
}

func TestLoadStrategyByName(t *testing.T) {
	t.Parallel()
	_, err := LoadStrategyByName("test")
	assert.ErrorIs(t, err, base.ErrStrategyNotFound)

	resp, err := LoadStrategyByName("ZSCORE-Mean-Reversion")
	require.NoError(t, err)
	assert.Equal(t, zscore.Name, resp.Name())
	entry, exit := resp.Thresholds()
	assert.Equal(t, 2.0, entry)
	assert.Equal(t, 0.5, exit)
	assert.Equal(t, 24, resp.Window())

	other, err := LoadStrategyByName(zscore.Name)
	require.NoError(t, err)
	require.NoError(t, other.SetCustomSettings(map[string]any{"entry-threshold": 3.0}))
	entry, _ = resp.Thresholds()
	assert.Equal(t, 2.0, entry, "each load must return an independent instance")
}
