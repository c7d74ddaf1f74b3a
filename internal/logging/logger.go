// Package logging wraps charmbracelet/log with a process-wide default
// logger and the shared structured field names used across picofix.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // One shared default logger for the process.
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

// New returns a stderr logger at the given level. Unknown or empty level
// strings fall back to info; "warning" is accepted as an alias for "warn".
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

// Default returns the process-wide logger, creating it at info level on
// first use.
func Default() *log.Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
	})
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Meant for tests and for
// main() wiring before any logging happens.
func SetDefault(logger *log.Logger) {
	defaultLogger = logger
}

// SetLevel adjusts the level of the process-wide logger in place, so
// loggers already derived from it pick up the change.
func SetLevel(level string) {
	Default().SetLevel(parseLevel(level))
}

func parseLevel(level string) log.Level {
	level = strings.ToLower(level)
	if level == "warning" {
		level = "warn"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
