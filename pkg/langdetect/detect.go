// Package langdetect names the language of a code block, either from its
// fence info string or, when the fence has none, from the code itself.
// Detection uses go-enry plus a few signatures that are reliable on the short
// snippets typical of chat-style Markdown.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language can be determined.
const Text = "text"

// MinDetectBytes is the shortest snippet Detect classifies. Shorter code,
// which is common while a block is still streaming, yields Text.
const MinDetectBytes = 12

// classifierCandidates limits the enry classifier to languages that commonly
// appear in fenced code blocks.
//
//nolint:gochecknoglobals // read-only
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "Swift", "Kotlin",
	"SQL", "JSON", "YAML", "HTML", "CSS", "Dockerfile",
}

// signature recognises a language from a distinctive construct.
type signature struct {
	lang  string
	match func(code, trimmed string) bool
}

// signatures are checked in order; the first match wins.
//
//nolint:gochecknoglobals // read-only
var signatures = []signature{
	{"go", func(_, trimmed string) bool {
		return strings.HasPrefix(trimmed, "package ") || strings.Contains(trimmed, "func main() {")
	}},
	{"python", func(code, _ string) bool {
		return (strings.Contains(code, "def ") && strings.Contains(code, "):")) ||
			strings.Contains(code, "__name__") ||
			(strings.Contains(code, "import ") && strings.Contains(code, "from ") && !strings.Contains(code, "import {"))
	}},
	{"swift", func(code, _ string) bool {
		return strings.Contains(code, "import SwiftUI") || strings.Contains(code, "import Foundation") ||
			(strings.Contains(code, "func ") && strings.Contains(code, "-> ") && strings.Contains(code, "let "))
	}},
	{"html", func(_, trimmed string) bool {
		lower := strings.ToLower(trimmed)
		return strings.HasPrefix(lower, "<!doctype html") || strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
	}},
	{"json", func(_, trimmed string) bool {
		return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") && strings.Contains(trimmed, `":`)) ||
			(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && strings.Contains(trimmed, `"`))
	}},
	{"dockerfile", func(_, trimmed string) bool {
		return strings.HasPrefix(trimmed, "FROM ") && (strings.Contains(trimmed, "\nRUN ") || strings.Contains(trimmed, "\nCOPY "))
	}},
	{"sql", func(_, trimmed string) bool {
		upper := strings.ToUpper(trimmed)
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
	{"rust", func(code, _ string) bool {
		return strings.Contains(code, "println!") || strings.Contains(code, "let mut ") || strings.Contains(code, "fn main()")
	}},
	{"javascript", func(code, _ string) bool {
		return strings.Contains(code, "=>") || strings.Contains(code, "console.log") || strings.Contains(code, "const ")
	}},
	{"yaml", func(code, _ string) bool { return yamlPairs(code) >= 2 }},
}

// FromInfo returns the canonical language named by a fence info string, or
// "" when the info string is empty. Known aliases ("golang", "sh", "js") map
// to their canonical name; unknown names are returned in lower case.
func FromInfo(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}

	name := strings.Trim(fields[0], "{}.")
	name = strings.TrimPrefix(name, "language-")
	if name == "" {
		return ""
	}

	if lang, ok := enry.GetLanguageByAlias(name); ok {
		return normalize(lang)
	}
	return strings.ToLower(name)
}

// Detect guesses the language of code. It returns Text when the snippet is
// too short or no guess is confident.
func Detect(code string) string {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < MinDetectBytes {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang([]byte(trimmed)); safe {
		return normalize(lang)
	}

	for _, sig := range signatures {
		if sig.match(code, trimmed) {
			return sig.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier([]byte(code), classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}
	return Text
}

// Resolve returns the language for a code block with the given info string
// and content. When the info string names no language, the code is detected
// if detect is true; otherwise Text is returned.
func Resolve(info, code string, detect bool) string {
	if lang := FromInfo(info); lang != "" {
		return lang
	}
	if detect {
		return Detect(code)
	}
	return Text
}

// yamlPairs counts lines that look like YAML mappings or sequence items.
func yamlPairs(code string) int {
	count := 0
	for line := range strings.Lines(code) {
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "- "):
			count++
		case strings.Contains(line, ": ") && !strings.ContainsAny(line, "({;") && !strings.HasPrefix(line, `"`):
			count++
		}
	}
	return count
}

// normalize converts a go-enry language name to a fence tag.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return "bash"
	case "C++":
		return "cpp"
	case "C#":
		return "csharp"
	}
	return strings.ToLower(lang)
}
