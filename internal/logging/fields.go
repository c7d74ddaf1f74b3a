package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldDialect = "dialect"
	FieldWrite   = "write"
	FieldDryRun  = "dry_run"
	FieldJobs    = "jobs"
	FieldBackup  = "backup"

	// Occurrence fields.
	FieldKind   = "kind"
	FieldLine   = "line"
	FieldCol    = "col"
	FieldOffset = "offset"
	FieldLength = "length"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesChanged    = "files_changed"
	FieldOccurrences     = "occurrences"
	FieldWarnings        = "warnings"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
