package incremental

// Default tail window knobs.
const (
	DefaultBaseWindow          = 3
	DefaultComplexWindow       = 5
	DefaultOpenConstructWindow = 8
	DefaultSuffixScanBytes     = 2048
)

// Options tunes how many trailing blocks the controller reparses.
// The zero value selects the defaults.
type Options struct {
	// BaseWindow is the number of trailing top-level blocks always reparsed.
	BaseWindow int

	// ComplexWindow applies when one of the last three blocks is a
	// blockquote, list, code block or table.
	ComplexWindow int

	// OpenConstructWindow applies when the end of the previous text looks
	// like an unterminated fence or a continuing list, quote or table.
	OpenConstructWindow int

	// SuffixScanBytes bounds how much of the previous text is inspected for
	// open constructs. It counts UTF-8 bytes, not characters, and the scan
	// starts on the first rune boundary inside the bound, so multi-byte text
	// sees fewer characters. A short scan can only narrow the window; the
	// stable prefix is still compared byte for byte before any reuse.
	//
	// Growth is measured in bytes as well: new text that is not longer in
	// bytes than the previous text is never parsed incrementally.
	SuffixScanBytes int
}

// DefaultOptions returns the default window knobs.
func DefaultOptions() Options {
	return Options{
		BaseWindow:          DefaultBaseWindow,
		ComplexWindow:       DefaultComplexWindow,
		OpenConstructWindow: DefaultOpenConstructWindow,
		SuffixScanBytes:     DefaultSuffixScanBytes,
	}
}

// withDefaults fills unset knobs.
func (o Options) withDefaults() Options {
	if o.BaseWindow <= 0 {
		o.BaseWindow = DefaultBaseWindow
	}
	if o.ComplexWindow <= 0 {
		o.ComplexWindow = DefaultComplexWindow
	}
	if o.OpenConstructWindow <= 0 {
		o.OpenConstructWindow = DefaultOpenConstructWindow
	}
	if o.SuffixScanBytes <= 0 {
		o.SuffixScanBytes = DefaultSuffixScanBytes
	}
	return o
}
