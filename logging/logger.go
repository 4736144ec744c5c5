// Package logging provides the allocator's leveled logger: a thin,
// four-level (Debug/Info/Error/Fatal) wrapper around zap's sugared
// logger.
package logging

import (
	"go.uber.org/zap"
)

// Logger is a thin, leveled wrapper around a zap sugared logger.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger. In debug mode it uses zap's development config
// (human-readable, caller-annotated, debug level and above); otherwise
// it uses the production config (JSON, info level and above).
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	z, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		// Config construction failing means a build-in zap preset is
		// broken, not a runtime condition callers can act on.
		panic(err)
	}
	return &Logger{z: z.Sugar()}
}

// Nop returns a Logger that discards everything, for callers that
// never opted into debug diagnostics.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// Debugf logs at debug level, gated by the logger's configured level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.z.Debugf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.z.Infof(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.z.Errorf(format, args...)
}

// Fatalf logs at fatal level and then terminates the process. Callers
// use it to abort with a diagnostic on a detected caller-precondition
// violation rather than continue with corrupted state.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.z.Fatalf(format, args...)
}

// Sync flushes any buffered log entries. Callers should defer it after
// constructing a non-Nop Logger.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
