// Package runner replays many Markdown files concurrently and aggregates the
// per-file replay reports.
package runner

import "github.com/yaklabco/mdstream/pkg/replay"

// Options controls a multi-file replay.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered Markdown when walking directories. Defaults to
	// DefaultExtensions().
	Extensions []string

	// IncludeGlobs restrict walked files to those matching a pattern.
	// Empty means "include everything that matches Extensions".
	IncludeGlobs []string

	// ExcludeGlobs skip walked files or whole directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Replay configures each file's replay.
	Replay replay.Options
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown", ".mdown", ".mkd"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
