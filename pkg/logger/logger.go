// Package logger holds the process-wide zap logger for the catalog
// server. Components tag their entries with WithModule instead of
// threading logger handles through every constructor.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

func init() {
	// Usable before Init runs, e.g. in tests that never configure it.
	global.Store(zap.NewNop())
}

// Init builds a production logger at the given level and installs it
// globally. An unrecognised level falls back to info.
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	global.Store(built)
	return nil
}

// Sync flushes buffered entries; deferred from main.
func Sync() error {
	return global.Load().Sync()
}

// WithModule returns a child logger tagged with the subsystem name.
func WithModule(module string) *zap.Logger {
	return global.Load().With(zap.String("module", module))
}
