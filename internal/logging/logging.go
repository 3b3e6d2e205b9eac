// Package logging builds the shared *zap.SugaredLogger used by the three
// CLI front-ends and the packages they drive (oracle cache hits/misses,
// reorder decisions, search progress).
//
// Teacher's own diagnostics (debug.go, hkernel.go) are build-time
// _DEBUG/_LOGLEVEL-gated log.Printf calls; this package generalizes that
// into leveled structured logging, still optional — a nil logger is never
// passed around, New always returns a usable one, falling back to
// zap.NewNop().Sugar() the same way rudd's gated prints disappear
// entirely when _DEBUG is off.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names the verbosity knob exposed on the CLIs.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a *zap.SugaredLogger writing human-readable console output
// at the given level. quiet forces LevelError regardless of level,
// matching the CLIs' --quiet flag.
func New(level Level, quiet bool) *zap.SugaredLogger {
	if quiet {
		level = LevelError
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "" // the CLIs run short-lived, timestamps add noise
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	logger, err := cfg.Build()
	if err != nil {
		// Building a console logger from a literal config cannot fail in
		// practice; fall back to Nop rather than make callers handle an
		// error from what is effectively a constant.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Nop returns a logger that discards everything, for tests and library
// callers that don't want diagnostics.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
