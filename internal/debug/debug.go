// Package debug holds the process-wide protocol logger. Wire-level
// tracing is enabled by setting WAYLAND_DEBUG to a positive integer,
// in the same way as libwayland.
package debug

import (
	"os"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(fromEnv())
}

func fromEnv() *zap.Logger {
	debugLevel, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if (err != nil) || (debugLevel <= 0) {
		return zap.NewNop()
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("wayland")
}

// Logger returns the current logger. It is never nil.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the logger. A nil logger disables logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Enabled reports whether protocol tracing would be written anywhere.
func Enabled() bool {
	return Logger().Core().Enabled(zap.DebugLevel)
}
