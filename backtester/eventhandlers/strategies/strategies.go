package strategies

import (
	"fmt"
	"strings"

	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/gct-pairs/backtester/eventhandlers/strategies/zscore"
)

// LoadStrategyByName returns a fresh strategy with its defaults applied
func LoadStrategyByName(name string) (Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		strats[i].SetDefaults()
		return strats[i], nil
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// GetStrategies returns a new instance of every supported strategy
func GetStrategies() []Handler {
	return []Handler{
		new(zscore.Strategy),
	}
}
