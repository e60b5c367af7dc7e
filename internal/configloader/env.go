package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/mdstream/pkg/config"
)

// envVarPrefix is the prefix for all mdstream environment variables.
const envVarPrefix = "MDSTREAM_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines an environment variable to config field mapping.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                            {"flavor", envTypeString, "Markdown flavor: commonmark or gfm"},
	"INCREMENTAL_ENABLED":               {"incremental.enabled", envTypeBool, "Enable incremental reparsing: true or false"},
	"INCREMENTAL_BASE_WINDOW":           {"incremental.base_window", envTypeInt, "Trailing blocks always reparsed"},
	"INCREMENTAL_COMPLEX_WINDOW":        {"incremental.complex_window", envTypeInt, "Window after lists, quotes, code or tables"},
	"INCREMENTAL_OPEN_CONSTRUCT_WINDOW": {"incremental.open_construct_window", envTypeInt, "Window inside an open construct"},
	"INCREMENTAL_SUFFIX_SCAN_BYTES":     {"incremental.suffix_scan_bytes", envTypeInt, "Trailing bytes scanned for open constructs"},
	"FAST_PATH_ENABLED":                 {"fast_path.enabled", envTypeBool, "Enable the plain-text fast path: true or false"},
	"HIGHLIGHT_CACHE_SIZE":              {"highlight.cache_size", envTypeInt, "Tokenized code blocks kept in memory"},
	"HIGHLIGHT_DETECT_LANGUAGE":         {"highlight.detect_language", envTypeBool, "Classify code blocks without a language"},
	"MAX_BYTES":                         {"max_bytes", envTypeInt, "Largest streamed document in bytes (0 = unlimited)"},
	"LOG_LEVEL":                         {"log_level", envTypeString, "Log level: debug, info, warn, or error"},
	"JOBS":                              {"jobs", envTypeInt, "Number of parallel replay workers (0 = auto)"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDSTREAM_ (e.g., MDSTREAM_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "incremental.enabled":
		cfg.Incremental.Enabled = config.Bool(value)
	case "fast_path.enabled":
		cfg.FastPath.Enabled = config.Bool(value)
	case "highlight.detect_language":
		cfg.Highlight.DetectLanguage = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "incremental.base_window":
		cfg.Incremental.BaseWindow = value
	case "incremental.complex_window":
		cfg.Incremental.ComplexWindow = value
	case "incremental.open_construct_window":
		cfg.Incremental.OpenConstructWindow = value
	case "incremental.suffix_scan_bytes":
		cfg.Incremental.SuffixScanBytes = value
	case "highlight.cache_size":
		cfg.Highlight.CacheSize = value
	case "max_bytes":
		cfg.MaxBytes = value
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
