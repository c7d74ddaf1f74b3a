package runner

import "github.com/yaklabco/picofix/pkg/fixer"

// FileOutcome wraps PipelineResult with resolved path metadata.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Result contains the pipeline result for this file.
	// May be nil if the file encountered an error during processing.
	Result *fixer.PipelineResult

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files successfully processed.
	FilesProcessed int

	// FilesSkipped is the number of files skipped (e.g., not Lua, or modified concurrently).
	FilesSkipped int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int

	// FilesChanged is the number of files whose content needed rewriting.
	FilesChanged int

	// FilesWritten is the number of files written back to disk.
	FilesWritten int

	// OccurrencesTotal is the total number of dialect occurrences across all files.
	OccurrencesTotal int

	// OccurrencesByKind maps occurrence kinds to counts.
	OccurrencesByKind map[string]int

	// WarningsTotal is the total number of diagnostic-only warnings.
	WarningsTotal int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Errors contains any non-file-specific errors encountered.
	Errors []error
}

// HasFailures reports whether any file failed to process.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || len(r.Errors) > 0
}

// HasFindings reports whether any dialect occurrences were found.
func (r *Result) HasFindings() bool {
	if r == nil {
		return false
	}
	return r.Stats.OccurrencesTotal > 0
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		OccurrencesByKind: make(map[string]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	if outcome.Result == nil {
		return
	}

	r.Stats.FilesProcessed++

	if outcome.Result.Skipped {
		r.Stats.FilesSkipped++
	}
	if outcome.Result.Written {
		r.Stats.FilesWritten++
	}

	if outcome.Result.Result == nil {
		return
	}

	if outcome.Result.Changed {
		r.Stats.FilesChanged++
	}

	r.Stats.OccurrencesTotal += len(outcome.Result.Occurrences)
	r.Stats.WarningsTotal += len(outcome.Result.Warnings)

	for _, occ := range outcome.Result.Occurrences {
		r.Stats.OccurrencesByKind[occ.Kind.String()]++
	}
}
