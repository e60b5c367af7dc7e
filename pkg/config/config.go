// Package config defines the configuration types for mdstream.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how the CLI prints parse results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// Default values for the tunable settings.
const (
	DefaultBaseWindow          = 3
	DefaultComplexWindow       = 5
	DefaultOpenConstructWindow = 8
	DefaultSuffixScanBytes     = 2048
	DefaultHighlightCacheSize  = 256
	DefaultLogLevel            = "info"
)

// IncrementalConfig controls tail reparsing.
type IncrementalConfig struct {
	// Enabled turns incremental reparsing on. Nil means the default (true).
	Enabled *bool `yaml:"enabled,omitempty"`

	// BaseWindow is the number of trailing top-level blocks always reparsed.
	BaseWindow int `yaml:"base_window,omitempty"`

	// ComplexWindow applies when a list, quote, code block or table is among
	// the last blocks.
	ComplexWindow int `yaml:"complex_window,omitempty"`

	// OpenConstructWindow applies while the text ends inside an open fence,
	// list, quote or table.
	OpenConstructWindow int `yaml:"open_construct_window,omitempty"`

	// SuffixScanBytes bounds how much trailing text is inspected for open
	// constructs.
	SuffixScanBytes int `yaml:"suffix_scan_bytes,omitempty"`
}

// FastPathConfig controls the plain-text append fast path.
type FastPathConfig struct {
	// Enabled turns the fast path on. Nil means the default (true).
	Enabled *bool `yaml:"enabled,omitempty"`
}

// HighlightConfig controls code block tokenization.
type HighlightConfig struct {
	// CacheSize is the number of tokenized code blocks kept.
	CacheSize int `yaml:"cache_size,omitempty"`

	// DetectLanguage classifies code blocks that carry no info string.
	// Nil means the default (true).
	DetectLanguage *bool `yaml:"detect_language,omitempty"`
}

// Config is the root configuration structure for mdstream.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor,omitempty"`

	Incremental IncrementalConfig `yaml:"incremental"`
	FastPath    FastPathConfig    `yaml:"fast_path"`
	Highlight   HighlightConfig   `yaml:"highlight"`

	// MaxBytes bounds the size of a streamed document. Zero means unlimited.
	MaxBytes int `yaml:"max_bytes,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Chunk is the replay chunk size in bytes.
	Chunk int `yaml:"-"`

	// Verify compares every replay step with a full parse.
	Verify bool `yaml:"-"`

	// Jobs specifies the number of files replayed in parallel.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor: FlavorGFM,
		Incremental: IncrementalConfig{
			Enabled:             Bool(true),
			BaseWindow:          DefaultBaseWindow,
			ComplexWindow:       DefaultComplexWindow,
			OpenConstructWindow: DefaultOpenConstructWindow,
			SuffixScanBytes:     DefaultSuffixScanBytes,
		},
		FastPath: FastPathConfig{Enabled: Bool(true)},
		Highlight: HighlightConfig{
			CacheSize:      DefaultHighlightCacheSize,
			DetectLanguage: Bool(true),
		},
		LogLevel: DefaultLogLevel,
		Format:   FormatText,
		Chunk:    1,
		Jobs:     0, // 0 means use GOMAXPROCS
	}
}

// IncrementalEnabled reports whether incremental reparsing is on.
func (c *Config) IncrementalEnabled() bool {
	return BoolValue(c.Incremental.Enabled, true)
}

// FastPathEnabled reports whether the plain-text fast path is on.
func (c *Config) FastPathEnabled() bool {
	return BoolValue(c.FastPath.Enabled, true)
}

// DetectLanguage reports whether code blocks without a language are
// classified.
func (c *Config) DetectLanguage() bool {
	return BoolValue(c.Highlight.DetectLanguage, true)
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// BoolValue returns *p, or def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
