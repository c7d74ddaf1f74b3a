package cli

import "github.com/yaklabco/picofix/pkg/runner"

// Exit codes for picofix.
const (
	// ExitSuccess indicates successful execution with nothing left to do.
	ExitSuccess = 0

	// ExitFindings indicates the run completed but found parse failures,
	// I/O errors, or unwritten fixes in strict/check mode.
	ExitFindings = 1

	// ExitInvalidUsage indicates invalid command-line usage or
	// configuration errors.
	ExitInvalidUsage = 2
)

// ExitCodeFromResult determines the exit code from a completed run.
// When failOnChange is set, files with pending (unwritten) fixes also
// produce a nonzero exit.
func ExitCodeFromResult(result *runner.Result, failOnChange bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.HasFailures() {
		return ExitFindings
	}

	if failOnChange && result.Stats.FilesChanged > result.Stats.FilesWritten {
		return ExitFindings
	}

	return ExitSuccess
}
