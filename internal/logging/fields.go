// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldPaths  = "paths"
	FieldFiles  = "files"
	FieldReason = "reason"

	// Configuration fields.
	FieldFlavor     = "flavor"
	FieldConfig     = "config"
	FieldChunk      = "chunk"
	FieldJobs       = "jobs"
	FieldWorkingDir = "working_dir"

	// Session fields.
	FieldStrategy     = "strategy"
	FieldBytes        = "bytes"
	FieldBlocks       = "blocks"
	FieldStableBlocks = "stable_blocks"
	FieldTailBlocks   = "tail_blocks"
	FieldChanges      = "changes"
	FieldStep         = "step"

	// Highlight fields.
	FieldLanguage  = "language"
	FieldCacheHits = "cache_hits"
	FieldCacheSize = "cache_size"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
