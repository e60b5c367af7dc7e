package reporter

import (
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatText    Format = "text"
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatSummary Format = "summary"
)

// formats lists every format in the order shown to users.
//
//nolint:gochecknoglobals // read-only
var formats = []Format{FormatText, FormatTable, FormatJSON, FormatYAML, FormatSummary}

// Formats returns the names of all supported formats.
func Formats() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat parses a format name, ignoring case and surrounding space.
// An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatText, nil
	}
	if f := Format(name); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", name, strings.Join(Formats(), ", "))
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

// Structured reports whether f is a machine-readable format. Structured
// output is never colored and cannot be interleaved with other text.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}
