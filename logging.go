package disruptorq

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// logger is the package-level diagnostic logger. It defaults to a no-op
// sink: the hot path never logs, and most embedders never need to either.
var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger overrides the package-level logger used for setup-phase
// warnings and slow-reader diagnostics. It has no effect on the
// claim/publish/observe hot path, which never logs.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// NewConsoleLogger is a convenience constructor for a human-readable
// stderr logger, useful from cmd/disruptorbench and from tests that want
// to see setup warnings.
func NewConsoleLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func log() *zerolog.Logger {
	return logger.Load()
}
