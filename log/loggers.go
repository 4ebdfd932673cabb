package log

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Info takes a pointer subLogger struct and string and logs it at info level
func Info(sl *SubLogger, data string) {
	if e := sl.event(zerolog.InfoLevel); e != nil {
		e.Msg(data)
	}
}

// Infoln takes a pointer subLogger struct and interface and logs it at info level
func Infoln(sl *SubLogger, v ...any) {
	if e := sl.event(zerolog.InfoLevel); e != nil {
		e.Msg(fmt.Sprint(v...))
	}
}

// Infof takes a pointer subLogger struct, string and interface and logs it at info level
func Infof(sl *SubLogger, data string, v ...any) {
	if e := sl.event(zerolog.InfoLevel); e != nil {
		e.Msgf(data, v...)
	}
}

// Debug takes a pointer subLogger struct and string and logs it at debug level
func Debug(sl *SubLogger, data string) {
	if e := sl.event(zerolog.DebugLevel); e != nil {
		e.Msg(data)
	}
}

// Debugln takes a pointer subLogger struct and interface and logs it at debug level
func Debugln(sl *SubLogger, v ...any) {
	if e := sl.event(zerolog.DebugLevel); e != nil {
		e.Msg(fmt.Sprint(v...))
	}
}

// Debugf takes a pointer subLogger struct, string and interface and logs it at debug level
func Debugf(sl *SubLogger, data string, v ...any) {
	if e := sl.event(zerolog.DebugLevel); e != nil {
		e.Msgf(data, v...)
	}
}

// Warn takes a pointer subLogger struct and string and logs it at warn level
func Warn(sl *SubLogger, data string) {
	if e := sl.event(zerolog.WarnLevel); e != nil {
		e.Msg(data)
	}
}

// Warnln takes a pointer subLogger struct and interface and logs it at warn level
func Warnln(sl *SubLogger, v ...any) {
	if e := sl.event(zerolog.WarnLevel); e != nil {
		e.Msg(fmt.Sprint(v...))
	}
}

// Warnf takes a pointer subLogger struct, string and interface and logs it at warn level
func Warnf(sl *SubLogger, data string, v ...any) {
	if e := sl.event(zerolog.WarnLevel); e != nil {
		e.Msgf(data, v...)
	}
}

// Error takes a pointer subLogger struct and string and logs it at error level
func Error(sl *SubLogger, data string) {
	if e := sl.event(zerolog.ErrorLevel); e != nil {
		e.Msg(data)
	}
}

// Errorln takes a pointer subLogger struct and interface and logs it at error level
func Errorln(sl *SubLogger, v ...any) {
	if e := sl.event(zerolog.ErrorLevel); e != nil {
		e.Msg(fmt.Sprint(v...))
	}
}

// Errorf takes a pointer subLogger struct, string and interface and logs it at error level
func Errorf(sl *SubLogger, data string, v ...any) {
	if e := sl.event(zerolog.ErrorLevel); e != nil {
		e.Msgf(data, v...)
	}
}

// WithFields returns a copy of the sub logger carrying the supplied
// structured fields on every line
func WithFields(sl *SubLogger, fields map[string]any) *SubLogger {
	if sl == nil {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return &SubLogger{
		name:   sl.name,
		levels: sl.levels,
		logger: sl.logger.With().Fields(fields).Logger(),
	}
}

// event returns nil when the level is disabled for the sub logger
func (sl *SubLogger) event(level zerolog.Level) *zerolog.Event {
	if sl == nil {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	var enabled bool
	switch level {
	case zerolog.DebugLevel:
		enabled = sl.levels.Debug
	case zerolog.InfoLevel:
		enabled = sl.levels.Info
	case zerolog.WarnLevel:
		enabled = sl.levels.Warn
	case zerolog.ErrorLevel:
		enabled = sl.levels.Error
	}
	if !enabled {
		return nil
	}
	return sl.logger.WithLevel(level)
}
