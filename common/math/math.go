package math

import (
	"errors"
	"math"
)

var (
	errZeroValue       = errors.New("cannot calculate with zero value")
	errInsufficientLen = errors.New("insufficient number of values")
)

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)-1))
}

func sumSquaredDeviations(values []float64) float64 {
	mean := ArithmeticAverage(values)
	var combined float64
	for i := range values {
		d := values[i] - mean
		combined += d * d
	}
	return combined
}

// Differences returns the first differences of a series, one shorter than
// the input
func Differences(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	resp := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		resp[i-1] = values[i] - values[i-1]
	}
	return resp
}

// PercentageChanges returns the simple returns of a series of values.
// A zero previous value yields a zero change
func PercentageChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	resp := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		resp[i-1] = values[i]/values[i-1] - 1
	}
	return resp
}

// CalculateCompoundAnnualGrowthRate returns CAGR as a fraction.
// Using days, intervals per year would be 365 and number of intervals would be the number of days
func CalculateCompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals float64) (float64, error) {
	if openValue <= 0 || intervalsPerYear == 0 || numberOfIntervals == 0 {
		return 0, errZeroValue
	}
	if closeValue <= 0 {
		return -1, nil
	}
	return math.Pow(closeValue/openValue, intervalsPerYear/numberOfIntervals) - 1, nil
}

// CalculateCalmarRatio is the annual rate of return versus its maximum drawdown.
// Max drawdown is expected as a positive fraction
func CalculateCalmarRatio(annualReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualReturn / math.Abs(maxDrawdown)
}

// CalculateSortinoRatio returns sortino ratio of per period returns compared to risk-free
func CalculateSortinoRatio(movementPerCandle []float64, riskFreeRate float64) (float64, error) {
	if len(movementPerCandle) == 0 {
		return 0, errInsufficientLen
	}
	totalNegativeResultsSquared := 0.0
	for x := range movementPerCandle {
		if d := movementPerCandle[x] - riskFreeRate; d < 0 {
			totalNegativeResultsSquared += d * d
		}
	}
	averageDownsideDeviation := math.Sqrt(totalNegativeResultsSquared / float64(len(movementPerCandle)))
	if averageDownsideDeviation == 0 {
		return 0, nil
	}
	return (ArithmeticAverage(movementPerCandle) - riskFreeRate) / averageDownsideDeviation, nil
}

// CalculateSharpeRatio returns sharpe ratio of per period returns compared to risk-free
func CalculateSharpeRatio(movementPerCandle []float64, riskFreeRate float64) (float64, error) {
	if len(movementPerCandle) <= 1 {
		return 0, errInsufficientLen
	}
	excessReturns := make([]float64, len(movementPerCandle))
	for i := range movementPerCandle {
		excessReturns[i] = movementPerCandle[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0, nil
	}
	return ArithmeticAverage(excessReturns) / standardDeviation, nil
}

// Drawdown describes the largest peak to trough decline of a series
type Drawdown struct {
	// Fraction is the decline relative to the peak, expressed as a positive number
	Fraction    float64
	Value       float64
	PeakIndex   int
	TroughIndex int
}

// MaximumDrawdown scans a value series for the largest relative decline
func MaximumDrawdown(values []float64) Drawdown {
	var resp Drawdown
	if len(values) == 0 {
		return resp
	}
	peakIdx := 0
	for i := range values {
		if values[i] > values[peakIdx] {
			peakIdx = i
		}
		if values[peakIdx] <= 0 {
			continue
		}
		decline := values[peakIdx] - values[i]
		if fraction := decline / values[peakIdx]; fraction > resp.Fraction {
			resp = Drawdown{
				Fraction:    fraction,
				Value:       decline,
				PeakIndex:   peakIdx,
				TroughIndex: i,
			}
		}
	}
	return resp
}
