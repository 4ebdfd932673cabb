package cointegration

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	gctmath "github.com/thrasher-corp/gct-pairs/common/math"
)

// adfResult is the outcome of an augmented Dickey-Fuller regression
type adfResult struct {
	stat float64
	lags int
	nobs int
}

// schwertMaxLag is 12·(n/100)^¼ capped so the regression keeps enough
// degrees of freedom
func schwertMaxLag(n int) int {
	maxLag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 2; maxLag > limit {
		maxLag = limit
	}
	return maxLag
}

// adfRegression fits Δy[t] = γ·y[t-1] + Σ δi·Δy[t-i] + c on the last rows
// available observations of the differenced series
func adfRegression(y, dy []float64, lags, rows int) (*olsFit, error) {
	offset := len(dy) - rows
	dep := make([]float64, rows)
	cols := make([][]float64, lags+1)
	for j := range cols {
		cols[j] = make([]float64, rows)
	}
	for r := 0; r < rows; r++ {
		t := offset + r
		dep[r] = dy[t]
		cols[0][r] = y[t]
		for i := 1; i <= lags; i++ {
			cols[i][r] = dy[t-i]
		}
	}
	return fitOLS(dep, designMatrix(true, cols...))
}

// augmentedDickeyFuller tests y for a unit root with a constant in the
// regression. The lag order is chosen by information criterion over a
// common sample then refitted on all usable observations
func augmentedDickeyFuller(y []float64, maxLags int, selection LagSelection) (*adfResult, error) {
	n := len(y)
	if maxLags == AutoLags {
		maxLags = schwertMaxLag(n)
	}
	if maxLags < 0 || n-1-maxLags < maxLags+3 {
		return nil, fmt.Errorf("%w: %d observations for %d lags", common.ErrDataInsufficient, n, maxLags)
	}
	dy := gctmath.Differences(y)

	lags := maxLags
	if selection != FixedLags {
		best := math.Inf(1)
		commonRows := len(dy) - maxLags
		for p := 0; p <= maxLags; p++ {
			fit, err := adfRegression(y, dy, p, commonRows)
			if err != nil {
				return nil, err
			}
			ic := fit.aic()
			if selection == BIC {
				ic = fit.bic()
			}
			if ic < best {
				best = ic
				lags = p
			}
		}
	}

	fit, err := adfRegression(y, dy, lags, len(dy)-lags)
	if err != nil {
		return nil, err
	}
	stat, err := fit.tStat(0)
	if err != nil {
		return nil, err
	}
	return &adfResult{stat: stat, lags: lags, nobs: fit.nobs}, nil
}
