package data

import (
	"errors"
	"regexp"
	"time"
)

// CandidateSeparator joins instrument identifiers into a candidate ID
const CandidateSeparator = "/"

var (
	errEmptyInstrument      = errors.New("instrument identifier cannot be empty")
	errLengthMismatch       = errors.New("timestamps and prices have different lengths")
	errNoData               = errors.New("no data")
	errDuplicateInstrument  = errors.New("duplicate instrument")
	errInvalidWindow        = errors.New("invalid window bounds")
	errInvalidCombination   = errors.New("invalid combination size")
	errNegativeFillLimit    = errors.New("forward fill limit cannot be negative")
	errNoCommonObservations = errors.New("series share no common observations")
	errMissingInstrument    = errors.New("requested instrument not loaded")

	// ErrInvalidTableName is returned for a table name that cannot be
	// placed into a query unquoted
	ErrInvalidTableName = errors.New("invalid table name")

	tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// Series is an ordered sequence of (timestamp, price) observations for a
// single instrument. Timestamps are strictly increasing and prices finite.
// A Series must not be modified after construction
type Series struct {
	Instrument string
	Times      []time.Time
	Prices     []float64
}

// Bundle holds several instruments on one shared time axis
type Bundle struct {
	times       []time.Time
	prices      map[string][]float64
	instruments []string
}

// Candidate is an ordered set of instruments tested together. For a pair,
// the first instrument is the dependent leg of the regression
type Candidate struct {
	Instruments []string `json:"instruments"`
}

// Builder collects observations from a loader row by row and groups them
// into one Series per instrument
type Builder struct {
	times  map[string][]time.Time
	prices map[string][]float64
}
