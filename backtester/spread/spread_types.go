package spread

import "errors"

// flatTolerance scales the smallest standard deviation treated as non-zero
const flatTolerance = 1e-12

var (
	errInvalidResult     = errors.New("cointegration result is not valid")
	errNoHedgeRatios     = errors.New("hedge ratios required")
	errInstrumentCount   = errors.New("instrument count does not match hedge ratios")
	errPriceCount        = errors.New("price count does not match spread legs")
	errWindowTooSmall    = errors.New("rolling window must hold at least two values")
	errNonFiniteSpread   = errors.New("spread value is not finite")
	errEmptyPairID       = errors.New("pair identifier cannot be empty")
	errNonFiniteRatio    = errors.New("hedge ratio is not finite")
	errMissingInstrument = errors.New("missing instrument")
)

// Spread is a fixed linear combination of instrument prices. The weights
// never change for the life of a Spread, a new hedge ratio means a new Spread
type Spread struct {
	id          string
	instruments []string
	weights     []float64
}

// RollingWindow keeps the most recent values up to its size
type RollingWindow struct {
	size   int
	values []float64
	head   int
	count  int
}

// Observation is the state of a spread at one timestamp
type Observation struct {
	Spread float64 `json:"spread"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std-dev"`
	ZScore float64 `json:"z-score"`
	// DeltaStdDev is the standard deviation of per bar spread changes
	DeltaStdDev float64 `json:"delta-std-dev"`
	// Ready is set once the window is full and has a non-zero deviation
	Ready bool `json:"ready"`
	Flat  bool `json:"flat"`
}
