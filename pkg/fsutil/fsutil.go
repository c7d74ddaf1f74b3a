// Package fsutil provides the file safety primitives under the fix
// pipeline: snapshot reads with content hashing, modification detection,
// atomic writes, and sidecar backups. Together they guarantee a rewrite
// in place can never lose the original on a crash or clobber an edit
// made while picofix was running.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrNilFileInfo is returned when a nil FileInfo is passed.
	ErrNilFileInfo = errors.New("nil FileInfo")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// FileInfo is a snapshot of a file's identity at read time. Comparing a
// snapshot against the live file detects concurrent modification before
// a rewrite is committed.
type FileInfo struct {
	// Path is the path the snapshot was taken from.
	Path string

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime and Size are the cheap first-tier comparison.
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 of the content, the authoritative comparison.
	Hash [32]byte
}

// ReadFile reads a file and snapshots its identity in one step, so the
// returned FileInfo always describes exactly the returned content.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classifyError("stat", path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, classifyError("read", path, err)
	}

	info := &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}
	return content, info, nil
}

// CheckModified reports whether the file has changed since the snapshot
// was taken. A cheap mtime+size comparison catches most changes; when
// that passes, the content is re-hashed, since an editor can rewrite a
// file with identical size inside the mtime granularity. Deletion counts
// as a modification.
func CheckModified(ctx context.Context, info *FileInfo) (bool, error) {
	modified, stat, err := checkQuick(ctx, info)
	if err != nil || modified || stat == nil {
		return modified, err
	}

	content, err := os.ReadFile(info.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", info.Path, err)
	}
	return sha256.Sum256(content) != info.Hash, nil
}

// CheckModifiedQuick is the mtime+size tier alone, for callers that can
// tolerate a missed same-size rewrite.
func CheckModifiedQuick(ctx context.Context, info *FileInfo) (bool, error) {
	modified, _, err := checkQuick(ctx, info)
	return modified, err
}

// checkQuick compares mtime and size against the snapshot. The returned
// stat is nil when the file is gone (which reports as modified).
func checkQuick(ctx context.Context, info *FileInfo) (bool, os.FileInfo, error) {
	if info == nil {
		return false, nil, ErrNilFileInfo
	}
	if err := ctx.Err(); err != nil {
		return false, nil, fmt.Errorf("check modified: %w", err)
	}

	stat, err := os.Stat(info.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil, nil
		}
		return false, nil, fmt.Errorf("stat %s: %w", info.Path, err)
	}

	return !stat.ModTime().Equal(info.ModTime) || stat.Size() != info.Size, stat, nil
}

// classifyError wraps an os error with the matching sentinel so callers
// can branch on errors.Is without inspecting platform errnos.
func classifyError(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
