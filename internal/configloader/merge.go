package configloader

import "github.com/yaklabco/mdstream/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans are pointers: override overwrites base if override is non-nil,
//     so a file can turn a setting off
//   - Neither argument is modified
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	result := base.Clone()

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.MaxBytes != 0 {
		result.MaxBytes = override.MaxBytes
	}

	mergeIncremental(&result.Incremental, override.Incremental)

	if override.FastPath.Enabled != nil {
		result.FastPath.Enabled = config.Bool(*override.FastPath.Enabled)
	}

	if override.Highlight.CacheSize != 0 {
		result.Highlight.CacheSize = override.Highlight.CacheSize
	}
	if override.Highlight.DetectLanguage != nil {
		result.Highlight.DetectLanguage = config.Bool(*override.Highlight.DetectLanguage)
	}

	// CLI-level options.
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Chunk != 0 {
		result.Chunk = override.Chunk
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Verify {
		result.Verify = true
	}

	return result
}

func mergeIncremental(dst *config.IncrementalConfig, override config.IncrementalConfig) {
	if override.Enabled != nil {
		dst.Enabled = config.Bool(*override.Enabled)
	}
	if override.BaseWindow != 0 {
		dst.BaseWindow = override.BaseWindow
	}
	if override.ComplexWindow != 0 {
		dst.ComplexWindow = override.ComplexWindow
	}
	if override.OpenConstructWindow != 0 {
		dst.OpenConstructWindow = override.OpenConstructWindow
	}
	if override.SuffixScanBytes != 0 {
		dst.SuffixScanBytes = override.SuffixScanBytes
	}
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
