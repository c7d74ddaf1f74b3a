package runner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaklabco/picofix/pkg/langdetect"
)

// sniffLimit caps how much of an extensionless file is read for language
// detection when it is named explicitly on the command line.
const sniffLimit = 64 * 1024

// Discover finds Lua source files matching opts under the given working
// directory and returns a deterministically sorted list of absolute paths.
//
// Directories are walked and filtered by extension. A file named explicitly
// is also accepted without a known extension when its content looks like
// Lua (shebang, cartridge header, or classifier), so exported carts and
// extensionless scripts can be passed directly.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	extensions := opts.effectiveExtensions()

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if info.IsDir() {
			discovered, err := walkDirectory(ctx, absPath, workDir, extensions, opts)
			if err != nil {
				return nil, err
			}
			for _, f := range discovered {
				add(f)
			}
			continue
		}

		if acceptExplicitFile(absPath, workDir, extensions, opts) {
			add(absPath)
		}
	}

	sort.Strings(files)
	return files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(workDir)
}

// walkDirectory recursively collects files with a matching extension,
// skipping hidden entries and excluded directories.
func walkDirectory(
	ctx context.Context,
	root string,
	workDir string,
	extensions []string,
	opts Options,
) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath := relativeTo(workDir, path)

		if entry.IsDir() {
			// Hidden directories are never descended into, except the root
			// itself (so "picofix fix .hidden/" still works).
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesAny(relPath, opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, ok := resolveSymlink(path)
			if !ok {
				return nil
			}
			if target.IsDir() {
				if !opts.FollowSymlinks {
					return nil
				}
				// Walk the resolved target rather than the link itself;
				// WalkDir uses Lstat on the root, so this cannot recurse
				// back through the same link.
				realPath, _ := filepath.EvalSymlinks(path)
				subFiles, err := walkDirectory(ctx, realPath, workDir, extensions, opts)
				if err != nil {
					return err
				}
				files = append(files, subFiles...)
				return nil
			}
			// File symlinks fall through to the regular checks.
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if hasMatchingExtension(path, extensions) && passesGlobs(relPath, opts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

// acceptExplicitFile decides whether a file named directly on the command
// line should be processed. Unlike the walk, a file without a recognized
// extension gets its content sniffed.
func acceptExplicitFile(path, workDir string, extensions []string, opts Options) bool {
	if !passesGlobs(relativeTo(workDir, path), opts) {
		return false
	}
	if hasMatchingExtension(path, extensions) {
		return true
	}
	if filepath.Ext(path) != "" {
		return false
	}
	return sniffLua(path)
}

// sniffLua reads the head of an extensionless file and asks langdetect
// whether it is Lua.
func sniffLua(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, sniffLimit))
	if err != nil {
		return false
	}
	return langdetect.IsLua(path, head)
}

// resolveSymlink stats a symlink's target, reporting false for broken or
// inaccessible links.
func resolveSymlink(path string) (os.FileInfo, bool) {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false
	}
	info, err := os.Stat(realPath)
	if err != nil {
		return nil, false
	}
	return info, true
}

// relativeTo returns path relative to base, or path unchanged when the
// relation cannot be computed.
func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

// passesGlobs applies the exclude and include pattern lists.
func passesGlobs(relPath string, opts Options) bool {
	if matchesAny(relPath, opts.ExcludeGlobs) {
		return false
	}
	if len(opts.IncludeGlobs) > 0 && !matchesAny(relPath, opts.IncludeGlobs) {
		return false
	}
	return true
}

// hasMatchingExtension checks the path against the accepted extensions,
// case-insensitively.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// matchesAny reports whether relPath matches any of the glob patterns.
func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(relPath, pattern) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-normalized path against a glob pattern.
// "**" matches any number of path segments (including none); other
// segments use filepath.Match semantics. A pattern without a separator
// also matches against the bare filename, so "vendor" excludes any
// vendor directory and "*.p8" matches carts at any depth.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/")) {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && ok
	}
	return false
}

// matchSegments matches path segments against pattern segments, where a
// "**" pattern segment may consume zero or more path segments. A pattern
// ending in "**" matches the whole remaining subtree; a bare directory
// pattern also matches everything beneath that directory.
func matchSegments(segs, pats []string) bool {
	for len(pats) > 0 {
		if pats[0] == "**" {
			if len(pats) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(segs[i:], pats[1:]) {
					return true
				}
			}
			return false
		}

		if len(segs) == 0 {
			return false
		}
		ok, err := filepath.Match(pats[0], segs[0])
		if err != nil || !ok {
			return false
		}
		segs = segs[1:]
		pats = pats[1:]
	}

	// All pattern segments consumed: exact match, or a directory pattern
	// matching everything beneath it.
	return true
}
