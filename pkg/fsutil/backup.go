package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// BackupSuffix is appended to a file's path to form its sidecar backup.
const BackupSuffix = ".picofix.bak"

// BackupMode selects where backups go.
type BackupMode string

const (
	// BackupModeSidecar keeps the backup next to the original, original
	// name plus BackupSuffix.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups entirely.
	BackupModeNone BackupMode = "none"
)

// BackupConfig controls whether and how originals are preserved before an
// in-place rewrite.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig returns the defaults: sidecar mode, disabled until
// the caller opts in.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Enabled: false, Mode: BackupModeSidecar}
}

// BackupPath maps a file path to its backup path, or "" when the mode
// produces no backup. Unrecognized modes behave as sidecar.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// OriginalPath is the inverse of BackupPath for sidecar backups. The
// second return is false when path is not a backup path.
func OriginalPath(backupPath string) (string, bool) {
	orig, ok := strings.CutSuffix(backupPath, BackupSuffix)
	if !ok || orig == "" {
		return "", false
	}
	return orig, true
}

// CreateBackup preserves the current content of path before a rewrite.
// It is idempotent: an existing backup is never overwritten, so however
// many times a file gets fixed, the backup still holds the pre-picofix
// original. Reports whether a backup was actually written.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	backupPath := BackupPath(path, cfg.Mode)
	if backupPath == "" {
		return false, nil
	}

	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat backup path: %w", err)
	}

	return copyAtomic(ctx, path, backupPath)
}

// RestoreBackup puts a file back to its backed-up content. Reports false
// without error when no backup exists.
func RestoreBackup(ctx context.Context, path string, mode BackupMode) (bool, error) {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false, nil
	}
	return copyAtomic(ctx, backupPath, path)
}

// RemoveBackup deletes the backup for path, reporting whether one existed.
func RemoveBackup(path string, mode BackupMode) (bool, error) {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false, nil
	}

	if err := os.Remove(backupPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}

// BackupExists reports whether path currently has a backup.
func BackupExists(path string, mode BackupMode) bool {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false
	}
	_, err := os.Stat(backupPath)
	return err == nil
}

// copyAtomic copies src to dst with src's mode, via WriteAtomic. A
// missing src reports false without error.
func copyAtomic(ctx context.Context, src, dst string) (bool, error) {
	content, info, err := ReadFile(ctx, src)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := WriteAtomic(ctx, dst, content, info.Mode); err != nil {
		return false, fmt.Errorf("write %s: %w", dst, err)
	}
	return true, nil
}
