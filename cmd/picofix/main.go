// Package main is the entry point for the picofix CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/picofix/internal/cli"
	"github.com/yaklabco/picofix/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Build and execute the root command.
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Don't log ErrIssuesFound - it's just a signal for exit code.
		if errors.Is(err, cli.ErrIssuesFound) {
			return cli.ExitFindings
		}

		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		return cli.ExitInvalidUsage
	}

	return cli.ExitSuccess
}
