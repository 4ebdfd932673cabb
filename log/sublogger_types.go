package log

import "github.com/rs/zerolog"

// SubLogger defines a named logger with its own enabled levels
type SubLogger struct {
	name   string
	levels Levels
	logger zerolog.Logger
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

// Name returns the registered name of the sub logger
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}
