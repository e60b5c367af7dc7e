package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "incremental.base_window").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) addError(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText: true,
	config.FormatJSON: true,
	config.FormatYAML: true,
}

// Validate checks a configuration for errors and warnings. Zero-valued
// numeric settings are accepted and mean "use the default".
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !knownFlavors[cfg.Flavor] {
		result.addError("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.addError("format", cfg.Format, "invalid format %q; must be one of: text, json, yaml", cfg.Format)
	}
	if cfg.LogLevel != "" && !logging.IsValidLevel(cfg.LogLevel) {
		result.addError("log_level", cfg.LogLevel, "invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	validateIncremental(cfg.Incremental, result)

	if cfg.Highlight.CacheSize < 0 {
		result.addError("highlight.cache_size", cfg.Highlight.CacheSize, "cache_size must be >= 0 (0 means default)")
	}
	if cfg.MaxBytes < 0 {
		result.addError("max_bytes", cfg.MaxBytes, "max_bytes must be >= 0 (0 means unlimited)")
	}
	if cfg.Chunk < 0 {
		result.addError("chunk", cfg.Chunk, "chunk must be >= 0 (0 means one byte)")
	}
	if cfg.Jobs < 0 {
		result.addError("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if !cfg.IncrementalEnabled() && !cfg.FastPathEnabled() {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "incremental.enabled",
			Value:   false,
			Message: "incremental reparsing and the fast path are both off; every append parses the whole document",
		})
	}

	return result
}

func validateIncremental(inc config.IncrementalConfig, result *ValidationResult) {
	windows := []struct {
		field string
		value int
	}{
		{"incremental.base_window", inc.BaseWindow},
		{"incremental.complex_window", inc.ComplexWindow},
		{"incremental.open_construct_window", inc.OpenConstructWindow},
	}
	for _, w := range windows {
		if w.value < 0 {
			result.addError(w.field, w.value, "window must be >= 0 (0 means default)")
		}
	}
	if inc.SuffixScanBytes < 0 {
		result.addError("incremental.suffix_scan_bytes", inc.SuffixScanBytes, "suffix_scan_bytes must be >= 0 (0 means default)")
	}

	if inc.BaseWindow > 0 && inc.ComplexWindow > 0 && inc.BaseWindow > inc.ComplexWindow {
		result.addError("incremental.complex_window", inc.ComplexWindow,
			"complex_window (%d) must be >= base_window (%d)", inc.ComplexWindow, inc.BaseWindow)
	}
	if inc.ComplexWindow > 0 && inc.OpenConstructWindow > 0 && inc.ComplexWindow > inc.OpenConstructWindow {
		result.addError("incremental.open_construct_window", inc.OpenConstructWindow,
			"open_construct_window (%d) must be >= complex_window (%d)", inc.OpenConstructWindow, inc.ComplexWindow)
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidFlavor returns true if the flavor is valid.
func IsValidFlavor(f config.Flavor) bool {
	return knownFlavors[f]
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
