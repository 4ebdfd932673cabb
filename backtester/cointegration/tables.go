package cointegration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// significance level indexes into the tables below
const (
	onePercent = iota
	fivePercent
	tenPercent
)

// mackinnonSurface holds MacKinnon (2010) response surface coefficients
// for the constant only regression. Index [N-1][significance] gives
// b0, b1, b2, b3 so that cv = b0 + b1/T + b2/T^2 + b3/T^3
var mackinnonSurface = [6][3][4]float64{
	{
		{-3.43035, -6.5393, -16.786, -79.433},
		{-2.86154, -2.8903, -4.234, -40.040},
		{-2.56677, -1.5384, -2.809, 0},
	},
	{
		{-3.89644, -10.9519, -33.527, 0},
		{-3.33613, -6.1101, -6.823, 0},
		{-3.04445, -4.2412, -2.720, 0},
	},
	{
		{-4.29374, -14.4354, -33.195, 47.433},
		{-3.74066, -8.5632, -10.852, 27.982},
		{-3.45218, -6.2143, -3.718, 0},
	},
	{
		{-4.64332, -18.1031, -37.972, 0},
		{-4.09600, -11.2349, -11.175, 0},
		{-3.80952, -8.3931, -4.137, 0},
	},
	{
		{-4.95756, -21.8883, -45.142, 0},
		{-4.41519, -14.0405, -12.575, 0},
		{-4.13210, -10.7417, -3.784, 0},
	},
	{
		{-5.24568, -25.6688, -57.737, 88.639},
		{-4.70693, -16.9178, -17.492, 60.007},
		{-4.42686, -13.1875, -5.104, 27.877},
	},
}

// MacKinnon (1994) approximate p-value coefficients, constant only
// regression, indexed by N-1
var (
	tauMax    = [6]float64{2.74, 0.92, 0.55, 0.61, 0.79, 1}
	tauMin    = [6]float64{-18.83, -18.86, -23.48, -28.07, -25.96, -23.27}
	tauStar   = [6]float64{-1.61, -2.62, -3.13, -3.47, -3.78, -4.04}
	tauSmallP = [6][3]float64{
		{2.1659, 1.4412, 0.038269},
		{2.92, 1.5012, 0.039796},
		{3.4699, 1.4856, 0.03164},
		{3.9673, 1.4777, 0.026315},
		{4.5509, 1.5338, 0.029545},
		{5.1399, 1.6036, 0.034445},
	}
	tauLargeP = [6][4]float64{
		{1.7339, 0.93202, -0.12745, -0.010368},
		{2.1945, 0.64695, -0.29198, -0.042377},
		{2.5893, 0.45168, -0.36529, -0.050074},
		{3.0387, 0.45452, -0.33666, -0.041921},
		{3.5049, 0.52098, -0.29158, -0.033468},
		{3.9489, 0.58933, -0.25359, -0.02721},
	}
)

// Osterwald-Lenum critical values for the Johansen test with an
// unrestricted constant, indexed by the number of non-cointegrated
// relations (k - r) minus one and significance level
var (
	johansenTrace = [6][3]float64{
		{6.6349, 3.8415, 2.7055},
		{19.9349, 15.4943, 13.4294},
		{35.4628, 29.7961, 27.0669},
		{54.6815, 47.8545, 44.4929},
		{77.8202, 69.8189, 65.8202},
		{104.9637, 95.7542, 91.1090},
	}
	johansenMaxEigen = [6][3]float64{
		{6.6349, 3.8415, 2.7055},
		{18.5200, 14.2639, 12.2971},
		{25.8650, 21.1314, 18.8928},
		{32.7172, 27.5858, 25.1236},
		{39.3693, 33.8777, 31.2379},
		{45.8662, 40.0763, 37.2786},
	}
)

var standardNormal = distuv.UnitNormal

// significanceIndex maps a significance level onto the table column
func significanceIndex(significance float64) (int, error) {
	switch {
	case math.Abs(significance-0.01) < 1e-9:
		return onePercent, nil
	case math.Abs(significance-0.05) < 1e-9:
		return fivePercent, nil
	case math.Abs(significance-0.10) < 1e-9:
		return tenPercent, nil
	}
	return 0, fmt.Errorf("%w: %v", errUnsupportedSignificance, significance)
}

// unitRootCriticalValues evaluates the response surface for n variables
// at sample size nobs
func unitRootCriticalValues(n, nobs int) (CriticalValues, error) {
	if n < 1 || n > len(mackinnonSurface) {
		return CriticalValues{}, fmt.Errorf("%w: %d", errUnsupportedDimension, n)
	}
	inv := 1 / float64(nobs)
	eval := func(b [4]float64) float64 {
		return b[0] + b[1]*inv + b[2]*inv*inv + b[3]*inv*inv*inv
	}
	s := mackinnonSurface[n-1]
	return CriticalValues{
		OnePercent:  eval(s[onePercent]),
		FivePercent: eval(s[fivePercent]),
		TenPercent:  eval(s[tenPercent]),
	}, nil
}

// unitRootPValue returns the MacKinnon approximate p-value of a tau statistic
func unitRootPValue(stat float64, n int) (float64, error) {
	if n < 1 || n > len(tauMax) {
		return 0, fmt.Errorf("%w: %d", errUnsupportedDimension, n)
	}
	switch {
	case stat > tauMax[n-1]:
		return 1, nil
	case stat < tauMin[n-1]:
		return 0, nil
	}
	var z float64
	if stat <= tauStar[n-1] {
		c := tauSmallP[n-1]
		z = c[0] + c[1]*stat + c[2]*stat*stat
	} else {
		c := tauLargeP[n-1]
		z = c[0] + c[1]*stat + c[2]*stat*stat + c[3]*stat*stat*stat
	}
	return standardNormal.CDF(z), nil
}

// johansenCriticalValues returns trace and maximum eigenvalue critical values
// for a system with k-r non-cointegrated relations
func johansenCriticalValues(kMinusR int) (trace, eigen CriticalValues, err error) {
	if kMinusR < 1 || kMinusR > len(johansenTrace) {
		return trace, eigen, fmt.Errorf("%w: %d", errUnsupportedDimension, kMinusR)
	}
	t := johansenTrace[kMinusR-1]
	e := johansenMaxEigen[kMinusR-1]
	return CriticalValues{OnePercent: t[0], FivePercent: t[1], TenPercent: t[2]},
		CriticalValues{OnePercent: e[0], FivePercent: e[1], TenPercent: e[2]},
		nil
}

// At returns the critical value at a table column
func (c CriticalValues) At(idx int) float64 {
	switch idx {
	case onePercent:
		return c.OnePercent
	case fivePercent:
		return c.FivePercent
	default:
		return c.TenPercent
	}
}

// bracketPValue derives a p-value from which table columns a statistic
// exceeds. Only Johansen statistics are bracketed, larger is stronger
func bracketPValue(stat float64, cv CriticalValues) float64 {
	switch {
	case stat > cv.OnePercent:
		return 0.01
	case stat > cv.FivePercent:
		return 0.05
	case stat > cv.TenPercent:
		return 0.10
	}
	return 1
}
