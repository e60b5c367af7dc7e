// Package highlight tokenizes code blocks for syntax colouring and caches the
// result.
//
// The parser only reports what a code block contains and which language it
// claims. This package turns that pair into a Key, tokenizes it with chroma
// into class-tagged byte spans, and keeps the spans in a bounded LRU cache
// owned by the caller. Colours are left to the renderer.
package highlight

import (
	"github.com/cespare/xxhash/v2"

	"github.com/yaklabco/mdstream/pkg/langdetect"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Key identifies one highlighting job.
type Key struct {
	Content  string
	Language string
}

// Hash returns a hash of the key suitable for cache lookups.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.Language)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Content)
	return d.Sum64()
}

// KeyFor returns the key of a code block. The language comes from the fence
// info string; when there is none it is detected from the code if detect is
// set. ok is false for blocks that are not code.
func KeyFor(b mdast.Block, detect bool) (key Key, ok bool) {
	if b.Kind != mdast.BlockCode {
		return Key{}, false
	}
	return Key{
		Content:  b.Code,
		Language: langdetect.Resolve(b.Info, b.Code, detect),
	}, true
}

// Keys returns the keys of every code block in doc, including code nested in
// lists and blockquotes, in document order.
func Keys(doc []mdast.Block, detect bool) []Key {
	var keys []Key
	mdast.WalkBlocks(doc, func(n mdast.Node) bool {
		b, isBlock := n.(mdast.Block)
		if !isBlock {
			_, isInline := n.(mdast.Inline)
			return !isInline
		}
		if key, ok := KeyFor(b, detect); ok {
			keys = append(keys, key)
		}
		return b.Kind != mdast.BlockParagraph && b.Kind != mdast.BlockHeading && b.Kind != mdast.BlockTable
	})
	return keys
}
