package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Discover finds Markdown files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	filter, err := newFilter(workDir, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
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

		// Explicitly named files bypass the filters.
		if !info.IsDir() {
			add(absPath)
			continue
		}

		discovered, err := filter.walk(ctx, absPath, opts.FollowSymlinks)
		if err != nil {
			return nil, err
		}
		for _, f := range discovered {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// filter decides which walked paths are replayed.
type filter struct {
	workDir    string
	extensions []string
	include    []glob.Glob
	exclude    []glob.Glob
}

func newFilter(workDir string, opts Options) (*filter, error) {
	include, err := compileGlobs(opts.IncludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("include pattern: %w", err)
	}
	exclude, err := compileGlobs(opts.ExcludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("exclude pattern: %w", err)
	}

	extensions := make([]string, 0, len(opts.effectiveExtensions()))
	for _, ext := range opts.effectiveExtensions() {
		extensions = append(extensions, strings.ToLower(ext))
	}

	return &filter{workDir: workDir, extensions: extensions, include: include, exclude: exclude}, nil
}

// compileGlobs compiles slash-separated patterns. A leading "**/" also
// matches at the top level, so "**/vendor" excludes ./vendor too.
func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		variants := []string{pattern}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			variants = append(variants, rest)
		}
		for _, p := range variants {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("%q: %w", pattern, err)
			}
			globs = append(globs, g)
		}
	}
	return globs, nil
}

// matchAny reports whether the slash path, or its final element, matches
// one of globs.
func matchAny(globs []glob.Glob, relPath string) bool {
	base := relPath[strings.LastIndex(relPath, "/")+1:]
	for _, g := range globs {
		if g.Match(relPath) || g.Match(base) {
			return true
		}
	}
	return false
}

func (f *filter) rel(path string) string {
	relPath, err := filepath.Rel(f.workDir, path)
	if err != nil {
		relPath = path
	}
	return filepath.ToSlash(relPath)
}

func (f *filter) hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (f *filter) skipDir(path string) bool {
	relPath := f.rel(path)
	return matchAny(f.exclude, relPath) || matchAny(f.exclude, relPath+"/")
}

func (f *filter) matchFile(path string) bool {
	if !f.hasExtension(path) {
		return false
	}
	relPath := f.rel(path)
	if matchAny(f.exclude, relPath) {
		return false
	}
	return len(f.include) == 0 || matchAny(f.include, relPath)
}

// walk returns the matching files below root. Hidden files and directories
// are skipped, as are directories the walker may not read.
func (f *filter) walk(ctx context.Context, root string, followSymlinks bool) ([]string, error) {
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

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || (path != root && f.skipDir(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped.
			}
			if target.IsDir() {
				if !followSymlinks || f.skipDir(path) {
					return nil
				}
				// Walk the resolved target; WalkDir does not follow a symlink root.
				realPath, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // Unresolvable links are skipped.
				}
				sub, err := f.walk(ctx, realPath, followSymlinks)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if f.matchFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}
