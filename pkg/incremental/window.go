package incremental

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

//nolint:gochecknoglobals // compiled once
var orderedMarker = regexp.MustCompile(`^\d+\.\s`)

// complexKinds are the grammar block kinds whose parse may still change as
// more lines arrive.
//
//nolint:gochecknoglobals // read-only lookup table
var complexKinds = map[string]bool{
	"Blockquote":      true,
	"List":            true,
	"FencedCodeBlock": true,
	"CodeBlock":       true,
	"Table":           true,
}

// window returns how many trailing top-level blocks of the previous parse
// must be reparsed. Each rule can only widen the window; the result lies in
// [1, len(ranges)].
func (o Options) window(previousText string, ranges []mdast.RootBlockRange) int {
	n := len(ranges)
	w := min(o.BaseWindow, n)

	for _, r := range ranges[max(n-3, 0):] {
		if complexKinds[r.Kind] {
			w = max(w, min(o.ComplexWindow, n))
			break
		}
	}

	suffix := tailBytes(previousText, o.SuffixScanBytes)
	if hasOpenFence(suffix) || continuesBlock(suffix) {
		w = min(max(w, o.OpenConstructWindow), n)
	}

	return max(w, 1)
}

// tailBytes returns at most n trailing bytes of s, starting on a rune
// boundary.
func tailBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

// hasOpenFence reports whether s holds an odd number of fence lines.
func hasOpenFence(s string) bool {
	count := 0
	for line := range strings.Lines(s) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			count++
		}
	}
	return count%2 == 1
}

// continuesBlock reports whether the last non-blank line of s starts with a
// blockquote, list or table marker.
func continuesBlock(s string) bool {
	line := lastNonBlankLine(s)
	if line == "" {
		return false
	}
	line = strings.TrimLeft(line, " \t")
	for _, marker := range []string{">", "- ", "* ", "+ ", "|"} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return orderedMarker.MatchString(line)
}

func lastNonBlankLine(s string) string {
	for s != "" {
		s = strings.TrimRight(s, "\r\n")
		i := strings.LastIndexByte(s, '\n')
		line := s[i+1:]
		if strings.TrimSpace(line) != "" {
			return line
		}
		if i < 0 {
			break
		}
		s = s[:i]
	}
	return ""
}
