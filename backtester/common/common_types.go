package common

import (
	"errors"

	"github.com/thrasher-corp/gct-pairs/log"
)

// Direction is the side of the spread a position holds
type Direction string

// Side is the side of an individual leg fill
type Side string

const (
	// LongSpread buys the first instrument and sells the hedge legs
	LongSpread Direction = "LONG SPREAD"
	// ShortSpread sells the first instrument and buys the hedge legs
	ShortSpread Direction = "SHORT SPREAD"

	// Buy side of a leg
	Buy Side = "BUY"
	// Sell side of a leg
	Sell Side = "SELL"
)

// Error taxonomy shared by every stage of a run
var (
	// ErrDataInsufficient is returned when there are fewer observations than a test or window requires.
	// The affected candidate or pair is skipped and the run continues
	ErrDataInsufficient = errors.New("insufficient data")
	// ErrNumericalDegeneracy covers singular regressions, zero variance and non-finite half-lives.
	// The candidate is marked invalid and the run continues
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
	// ErrConfigurationInvalid is fatal and surfaces before any simulation begins
	ErrConfigurationInvalid = errors.New("invalid configuration")
	// ErrRiskLimitExceeded is recorded when sizing is denied. It is never fatal
	ErrRiskLimitExceeded = errors.New("risk limit exceeded")
)

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilEvent is a common error for whenever a nil event occurs when it shouldn't have
	ErrNilEvent = errors.New("nil event received")
	// ErrNaNPrice is fatal for a simulation run
	ErrNaNPrice = errors.New("price is not a finite number")
	// ErrNonMonotonicTimestamp is fatal for a simulation run
	ErrNonMonotonicTimestamp = errors.New("timestamps are not strictly increasing")
	// ErrMisalignedSeries is returned when series in a bundle do not share a time axis
	ErrMisalignedSeries = errors.New("price series are not aligned")
	// ErrUnknownInstrument is returned when an instrument is not part of a bundle
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// sub logger names
const (
	setupName         = "SETUP"
	dataName          = "DATA"
	cointegrationName = "COINTEGRATION"
	strategyName      = "STRATEGY"
	riskName          = "RISK"
	simulatorName     = "SIMULATOR"
	statisticsName    = "STATISTICS"
	optimiserName     = "OPTIMISER"
	serverName        = "SERVER"
)

// Sub loggers used throughout the backtester. They are nil, and therefore
// silent, until RegisterBacktesterSubLoggers is called
var (
	Setup         *log.SubLogger
	Data          *log.SubLogger
	Cointegration *log.SubLogger
	Strategy      *log.SubLogger
	Risk          *log.SubLogger
	Simulator     *log.SubLogger
	Statistics    *log.SubLogger
	Optimiser     *log.SubLogger
	Server        *log.SubLogger
)

// ASCIILogo is optionally printed to the command line window
const ASCIILogo = `
    ____        _              ____             __   __            __
   / __ \____ _(_)_________   / __ )____ ______/ /__/ /____  _____/ /____  _____
  / /_/ / __ ` + "`" + `/ / ___/ ___/  / __  / __ ` + "`" + `/ ___/ //_/ __/ _ \/ ___/ __/ _ \/ ___/
 / ____/ /_/ / / /  (__  )  / /_/ / /_/ / /__/ ,< / /_/  __(__  ) /_/  __/ /
/_/    \__,_/_/_/  /____/  /_____/\__,_/\___/_/|_|\__/\___/____/\__/\___/_/
`
