package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: true,
		Level:   defaultLevels,
		Output:  "stdout",
		Format:  FormatConsole,
	}
}

func getWriter(c *Config) (io.Writer, error) {
	if c.Writer != nil {
		return c.Writer, nil
	}
	switch strings.ToLower(c.Output) {
	case "", "stdout", "console":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, c.Output)
	}
}

func newRoot(w io.Writer, format string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timestampFormat, NoColor: true}
	}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// SetupGlobalLogger rebuilds every registered sub logger from the supplied
// config. Sub loggers not named in the config inherit the global levels
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errSubLoggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()
	if !c.Enabled {
		root = zerolog.Nop()
		rootLevels = Levels{}
		for _, sl := range subLoggers {
			sl.logger = root
			sl.levels = Levels{}
		}
		return nil
	}
	format := strings.ToLower(c.Format)
	if format == "" {
		format = FormatConsole
	}
	if format != FormatConsole && format != FormatJSON {
		return fmt.Errorf("%w: %s", errUnhandledOutputFormat, c.Format)
	}
	w, err := getWriter(c)
	if err != nil {
		return err
	}
	root = newRoot(w, format)
	rootLevels = splitLevel(c.Level)
	for name, sl := range subLoggers {
		sl.logger = root.With().Str(subLoggerField, name).Logger()
		sl.levels = rootLevels
	}
	for i := range c.SubLoggers {
		sl, ok := subLoggers[strings.ToUpper(c.SubLoggers[i].Name)]
		if !ok {
			return fmt.Errorf("%w: %s", errSubLoggerNotFound, c.SubLoggers[i].Name)
		}
		sl.levels = splitLevel(c.SubLoggers[i].Level)
	}
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(strings.ToUpper(level), "|")
	for x := range enabledLevels {
		switch strings.TrimSpace(enabledLevels[x]) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

// NewSubLogger registers a named sub logger using the current global settings
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptySubLoggerName
	}
	name = strings.ToUpper(name)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := subLoggers[name]; ok {
		return nil, fmt.Errorf("%w: %s", errSubLoggerAlreadyExists, name)
	}
	sl := &SubLogger{
		name:   name,
		levels: rootLevels,
		logger: root.With().Str(subLoggerField, name).Logger(),
	}
	subLoggers[name] = sl
	return sl, nil
}

// GetSubLogger returns a registered sub logger by name
func GetSubLogger(name string) (*SubLogger, error) {
	mu.RLock()
	defer mu.RUnlock()
	sl, ok := subLoggers[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSubLoggerNotFound, name)
	}
	return sl, nil
}

// Global is the fallback sub logger
var Global = mustRegister("LOG")

func mustRegister(name string) *SubLogger {
	sl, err := NewSubLogger(name)
	if err != nil {
		panic(err)
	}
	return sl
}
