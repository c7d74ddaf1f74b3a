package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type loggerKeyType struct{}

//nolint:gochecknoglobals // Context key, never mutated.
var loggerKey loggerKeyType

// WithLogger attaches a logger to the context so worker goroutines can
// log through the caller's configuration.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached by WithLogger, falling back to
// the process-wide default.
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
