package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/picofix/internal/logging"
	"github.com/yaklabco/picofix/pkg/fsutil"
)

type restoreFlags struct {
	clean  bool
	dryRun bool
}

func newRestoreCommand() *cobra.Command {
	flags := &restoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Undo in-place rewrites from their backups",
		Long: `Restore files from the ` + fsutil.BackupSuffix + ` backups that "picofix fix
--write" leaves behind.

Directories are searched recursively for backup files. A file argument may
name either the rewritten file or its backup. The backup is kept after
restoring unless --clean is given.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.clean, "clean", false, "remove backups after restoring")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list files that would be restored")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string, flags *restoreFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	targets, err := collectRestoreTargets(args)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no backups found")
		return nil
	}

	var restored int
	for _, path := range targets {
		if flags.dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "would restore %s\n", path)
			continue
		}

		ok, err := fsutil.RestoreBackup(ctx, path, fsutil.BackupModeSidecar)
		if err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
		if !ok {
			continue
		}
		restored++
		fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", path)

		if flags.clean {
			if _, err := fsutil.RemoveBackup(path, fsutil.BackupModeSidecar); err != nil {
				logger.Warn("could not remove backup",
					logging.FieldPath, path,
					logging.FieldError, err,
				)
			}
		}
	}

	if !flags.dryRun {
		logger.Debug("restore complete", logging.FieldFiles, restored)
	}
	return nil
}

// collectRestoreTargets resolves args to the original paths that have a
// backup. File args may name either side of the pair; directories are
// walked for backup files.
func collectRestoreTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]struct{})
	var targets []string
	add := func(path string) {
		if !fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
			return
		}
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			targets = append(targets, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			if orig, ok := fsutil.OriginalPath(arg); ok {
				add(orig)
			} else {
				add(arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if os.IsPermission(walkErr) {
					return nil
				}
				return walkErr
			}
			if entry.IsDir() {
				if path != arg && strings.HasPrefix(entry.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if orig, ok := fsutil.OriginalPath(path); ok {
				add(orig)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}

	sort.Strings(targets)
	return targets, nil
}
