package fixer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/picofix/pkg/config"
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/fsutil"
	"github.com/yaklabco/picofix/pkg/langdetect"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrParseFailure indicates the file could not be parsed.
	ErrParseFailure = errors.New("parse failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult contains the result of processing a single file through the safety pipeline.
type PipelineResult struct {
	// Result contains the fix result for this file.
	// May be nil if the file was skipped before fixing.
	*Result

	// Path is the file path that was processed.
	Path string

	// OriginalInfo is the file state before processing.
	OriginalInfo *fsutil.FileInfo

	// Diff is the unified diff for dry-run mode (nil if not in dry-run).
	Diff *fix.Diff

	// Skipped is true if the file was skipped (e.g., not Lua, or modified concurrently).
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// BackupCreated is true if a backup was created for this file.
	BackupCreated bool

	// Written is true if the file was written to disk.
	Written bool
}

// Summary returns a human-readable summary of the pipeline result.
func (pr *PipelineResult) Summary() string {
	if pr.Skipped {
		return "skipped: " + pr.SkipReason
	}
	if pr.Written {
		if pr.BackupCreated {
			return "fixed (backup created)"
		}
		return "fixed"
	}
	if pr.Result != nil && pr.Changed {
		return "changes pending"
	}
	if pr.Result != nil && len(pr.Warnings) > 0 {
		return "warnings found"
	}
	return "ok"
}

// PipelineOptions controls safety pipeline behavior.
type PipelineOptions struct {
	// Write applies rewrites to files in place.
	Write bool

	// DryRun generates diffs without writing files.
	DryRun bool

	// Backup configures backup behavior.
	Backup fsutil.BackupConfig

	// StrictRaceDetection uses hash comparison for modification detection.
	// When false, only mod time and size are checked.
	StrictRaceDetection bool

	// ReParseAfterFix runs the fixer again on the rewritten content before
	// writing, as a belt-and-braces check that the output parses clean.
	ReParseAfterFix bool
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Write:               false,
		DryRun:              false,
		Backup:              fsutil.DefaultBackupConfig(),
		StrictRaceDetection: true,
		ReParseAfterFix:     false,
	}
}

// Pipeline orchestrates the safe processing of a single file.
type Pipeline struct {
	// Fixer parses and rewrites file content.
	Fixer *Fixer
}

// NewPipeline creates a new safety pipeline with the given fixer.
func NewPipeline(f *Fixer) *Pipeline {
	return &Pipeline{Fixer: f}
}

// ProcessFile runs the full safety pipeline for a single file.
//
// The pipeline performs the following steps:
//  1. Read and hash the original file.
//  2. Skip files that are not Lua source.
//  3. Parse and rewrite the content in memory.
//  4. Optionally re-run the fixer on the output to validate the rewrite.
//  5. Generate diff (if dry-run mode).
//  6. Check for concurrent modifications.
//  7. Create backup (if enabled).
//  8. Write the rewritten content atomically.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	path string,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{
		Path: path,
	}

	originalContent, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}
	result.OriginalInfo = info

	if !langdetect.IsLua(path, originalContent) {
		result.Skipped = true
		result.SkipReason = "not Lua source"
		return result, nil
	}

	if err := p.process(ctx, path, originalContent, result, opts); err != nil {
		return nil, err
	}
	if result.Skipped || !result.Changed {
		return result, nil
	}

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, originalContent, result.Output)
		return result, nil
	}

	if !opts.Write {
		return result, nil
	}

	// Check for concurrent modifications before writing.
	modified, err := p.checkModified(ctx, info, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, result.Output, info.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}

// ProcessContent processes in-memory content without file I/O.
// This is useful for testing or when content is already loaded.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	content []byte,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{
		Path: path,
	}

	if err := p.process(ctx, path, content, result, opts); err != nil {
		return nil, err
	}
	if result.Skipped || !result.Changed {
		return result, nil
	}

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, content, result.Output)
	}

	return result, nil
}

// process runs the fixer and the optional output validation, filling result.
func (p *Pipeline) process(
	ctx context.Context,
	path string,
	content []byte,
	result *PipelineResult,
	opts PipelineOptions,
) error {
	res, err := p.Fixer.Fix(ctx, path, content)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	result.Result = res

	if !res.Changed || !opts.ReParseAfterFix {
		return nil
	}

	check, err := p.Fixer.Fix(ctx, path, res.Output)
	if err != nil || check.Changed {
		result.Skipped = true
		result.SkipReason = "rewritten content failed validation"
		if err != nil {
			result.SkipReason = fmt.Sprintf("rewritten content failed to parse: %v", err)
		}
	}
	return nil
}

// checkModified checks if a file has been modified since it was read.
func (p *Pipeline) checkModified(ctx context.Context, info *fsutil.FileInfo, strict bool) (bool, error) {
	var modified bool
	var err error

	if strict {
		modified, err = fsutil.CheckModified(ctx, info)
	} else {
		modified, err = fsutil.CheckModifiedQuick(ctx, info)
	}

	if err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}
	return modified, nil
}

// categorizeError wraps an error with the appropriate pipeline error type.
// It uses errors.Is for robust error detection rather than string matching.
func categorizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	if errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return err
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrWriteFailure)
}

// BackupConfigFromConfig creates an fsutil.BackupConfig from config.Config.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	if cfg == nil {
		return fsutil.DefaultBackupConfig()
	}
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups && cfg.Write,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// PipelineOptionsFromConfig creates PipelineOptions from config.Config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	if cfg == nil {
		return DefaultPipelineOptions()
	}
	return PipelineOptions{
		Write:               cfg.Write,
		DryRun:              cfg.DryRun,
		Backup:              BackupConfigFromConfig(cfg),
		StrictRaceDetection: true,
		ReParseAfterFix:     false,
	}
}
