package log

import (
	"errors"
	"io"
	"sync"
)

const (
	defaultLevels   = "INFO|WARN|ERROR"
	timestampFormat = "02/01/2006 15:04:05"
	subLoggerField  = "sublogger"

	// FormatConsole writes human readable lines
	FormatConsole = "console"
	// FormatJSON writes one JSON object per line
	FormatJSON = "json"
)

var (
	errEmptySubLoggerName     = errors.New("sub logger name cannot be empty")
	errSubLoggerAlreadyExists = errors.New("sub logger already registered")
	errSubLoggerNotFound      = errors.New("sub logger not found")
	errUnhandledOutputWriter  = errors.New("unhandled output writer")
	errUnhandledOutputFormat  = errors.New("unhandled output format")
	errSubLoggerConfigIsNil   = errors.New("sub logger config is nil")
)

var (
	mu         sync.RWMutex
	subLoggers = map[string]*SubLogger{}
	root       = newRoot(nil, FormatConsole)
	rootLevels = splitLevel(defaultLevels)
)

// Config holds configuration settings for the logger
type Config struct {
	Enabled    bool              `json:"enabled" mapstructure:"enabled" default:"true"`
	Level      string            `json:"level" mapstructure:"level" default:"INFO|WARN|ERROR"`
	Output     string            `json:"output" mapstructure:"output" default:"stdout"`
	Format     string            `json:"format" mapstructure:"format" default:"console"`
	SubLoggers []SubLoggerConfig `json:"subloggers,omitempty" mapstructure:"subloggers"`
	// Writer overrides Output when set
	Writer io.Writer `json:"-" mapstructure:"-"`
}

// SubLoggerConfig holds sub logger configuration settings
type SubLoggerConfig struct {
	Name  string `json:"name" mapstructure:"name"`
	Level string `json:"level" mapstructure:"level"`
}
