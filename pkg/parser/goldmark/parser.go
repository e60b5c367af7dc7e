// Package goldmark adapts the goldmark Markdown engine to the mdast block model.
//
// Besides the tree, the parser reports where each top-level block sits in the
// source text (mdast.RootBlockRange) so that incremental callers can reparse
// only the tail of a growing document.
package goldmark

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdstream/pkg/mathindex"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// warmUpSource exercises every registered parser once at construction.
const warmUpSource = "# h\n\n> q\n\n- [x] t\n- i\n\n1. n\n\n```go\nc\n```\n\n| a |\n| - |\n| b |\n\n~~s~~ www.example.com $x$\n"

// Parser converts Markdown text into mdast blocks.
//
// A Parser is safe for concurrent use: every call builds its own parse
// context and the goldmark engine keeps no per-parse state.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm". Invalid flavors default to
// "gfm".
//
// New panics if the engine cannot be assembled. goldmark registers its
// parsers lazily, so New runs one warm-up parse to surface such failures
// here rather than on the first document.
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	p := &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
	p.ParseWithRanges(warmUpSource)
	return p
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts src into a parse result. Math identifiers are assigned in
// document order starting at 0.
func (p *Parser) Parse(src string) mdast.ParseResult {
	result, _ := p.ParseWithRanges(src)
	return result
}

// ParseBlockRange reports the source range and output block count of each
// top-level block of src.
func (p *Parser) ParseBlockRange(src string) []mdast.RootBlockRange {
	_, ranges := p.ParseWithRanges(src)
	return ranges
}

// ParseWithRanges parses src once and returns both the tree and the
// top-level block ranges.
//
// The method:
//  1. Replaces delimited math spans with placeholders.
//  2. Parses the placeholder text with goldmark, tracking block starts.
//  3. Converts each top-level goldmark block into mdast blocks.
//  4. Resolves placeholders, promotes single-dollar math and finishes text.
//  5. Renumbers math identifiers in document order.
//  6. Maps block starts back onto the original text.
func (p *Parser) ParseWithRanges(src string) (mdast.ParseResult, []mdast.RootBlockRange) {
	math := mathindex.Extract(src, 0)
	content := []byte(math.Text)

	tracker := newBlockTracker()
	pc := parser.NewContext()
	pc.Set(trackerKey, tracker)

	reader := text.NewReader(content)
	gmDoc := p.md.Parser().Parse(reader, parser.WithContext(pc))

	mapper := newMapper(content, math)
	var (
		blocks []topLevel
		doc    []mdast.Block
		floor  int
	)
	for child := gmDoc.FirstChild(); child != nil; child = child.NextSibling() {
		start := blockStart(tracker, child, content, floor)
		floor = start
		converted := mapper.mapBlock(child)
		blocks = append(blocks, topLevel{
			node:       child,
			start:      start,
			blocks:     converted,
			references: tracker.definesReferences(child),
		})
		doc = append(doc, converted...)
	}

	doc = math.Resolve(doc, finishText)
	return mathindex.Renumber(doc, 0), rootRanges(blocks, content, math)
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to GFM.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance whose
// block parsers record where top-level blocks open.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	opts := []parser.Option{
		parser.WithBlockParsers(trackBlockParsers(parser.DefaultBlockParsers())...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(trackParagraphTransformers(parser.DefaultParagraphTransformers(), true)...),
	}

	var extensions []goldmark.Extender
	switch flavor {
	case FlavorGFM:
		// Tables are registered by hand so the transformer that creates them
		// can be tracked.
		opts = append(opts,
			parser.WithParagraphTransformers(
				trackParagraphTransformers([]util.PrioritizedValue{
					util.Prioritized(extension.NewTableParagraphTransformer(), 200),
				}, false)...,
			),
			parser.WithASTTransformers(
				util.Prioritized(extension.NewTableASTTransformer(), 0),
			),
		)
		extensions = append(extensions,
			extension.Linkify,
			extension.Strikethrough,
			extension.TaskList,
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(
		goldmark.WithParser(parser.NewParser(opts...)),
		goldmark.WithExtensions(extensions...),
	)
}
