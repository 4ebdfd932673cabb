package file

import "errors"

var (
	errNoInstrumentColumns = errors.New("csv header needs a timestamp column and at least one instrument")
	errUnparsableTimestamp = errors.New("timestamp is neither RFC3339 nor unix seconds")
	errUnparsablePrice     = errors.New("unparsable price")
	errUnsupportedFile     = errors.New("unsupported price file extension")
	errMissingField        = errors.New("missing field")
	errInvalidObservation  = errors.New("observation must be a [unix, price] pair")
)
