package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticAverage(t *testing.T) {
	t.Parallel()
	assert.Zero(t, ArithmeticAverage(nil))
	assert.Equal(t, 2.5, ArithmeticAverage([]float64{1, 2, 3, 4}))
}

func TestStandardDeviations(t *testing.T) {
	t.Parallel()
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 2.0, PopulationStandardDeviation(values))
	assert.InDelta(t, 2.13808993529939, SampleStandardDeviation(values), 1e-12)
	assert.Zero(t, SampleStandardDeviation([]float64{1}))
	assert.Zero(t, PopulationStandardDeviation(nil))
}

func TestDifferences(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Differences([]float64{1}))
	assert.Equal(t, []float64{1, -3, 5}, Differences([]float64{1, 2, -1, 4}))
}

func TestPercentageChanges(t *testing.T) {
	t.Parallel()
	changes := PercentageChanges([]float64{100, 110, 99, 0, 5})
	require.Len(t, changes, 4)
	assert.InDelta(t, 0.1, changes[0], 1e-12)
	assert.InDelta(t, -0.1, changes[1], 1e-12)
	assert.Equal(t, -1.0, changes[2])
	assert.Zero(t, changes[3])
}

func TestCalculateCompoundAnnualGrowthRate(t *testing.T) {
	t.Parallel()
	_, err := CalculateCompoundAnnualGrowthRate(0, 1, 1, 1)
	assert.ErrorIs(t, err, errZeroValue)

	cagr, err := CalculateCompoundAnnualGrowthRate(100, 121, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cagr, 1e-12)

	cagr, err = CalculateCompoundAnnualGrowthRate(100, -5, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, -1.0, cagr)
}

func TestCalculateSharpeRatio(t *testing.T) {
	t.Parallel()
	_, err := CalculateSharpeRatio([]float64{1}, 0)
	assert.ErrorIs(t, err, errInsufficientLen)

	sharpe, err := CalculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 0)
	require.NoError(t, err)
	assert.Zero(t, sharpe, "zero deviation must not divide by zero")

	sharpe, err = CalculateSharpeRatio([]float64{0.01, 0.03, 0.02}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sharpe, 1e-12)
}

func TestCalculateSortinoRatio(t *testing.T) {
	t.Parallel()
	_, err := CalculateSortinoRatio(nil, 0)
	assert.ErrorIs(t, err, errInsufficientLen)

	sortino, err := CalculateSortinoRatio([]float64{0.02, -0.01, 0.02, -0.01}, 0)
	require.NoError(t, err)
	// mean 0.005, downside deviation sqrt(0.0002/4)
	assert.InDelta(t, 0.005/math.Sqrt(0.00005), sortino, 1e-12)
}

func TestCalculateCalmarRatio(t *testing.T) {
	t.Parallel()
	assert.Zero(t, CalculateCalmarRatio(0.2, 0))
	assert.InDelta(t, 2.0, CalculateCalmarRatio(0.2, 0.1), 1e-12)
}

func TestMaximumDrawdown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Drawdown{}, MaximumDrawdown(nil))
	dd := MaximumDrawdown([]float64{100, 120, 90, 110, 130, 117})
	assert.InDelta(t, 0.25, dd.Fraction, 1e-12)
	assert.Equal(t, 30.0, dd.Value)
	assert.Equal(t, 1, dd.PeakIndex)
	assert.Equal(t, 2, dd.TroughIndex)
}
