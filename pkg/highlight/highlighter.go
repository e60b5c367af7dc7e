package highlight

import (
	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Highlighter tokenizes code blocks through a shared cache.
type Highlighter struct {
	cache  *Cache
	detect bool
}

// New returns a highlighter backed by cache. A nil cache gets a private one
// of DefaultCacheSize. When detect is set, code blocks without a language
// are classified from their content.
func New(cache *Cache, detect bool) *Highlighter {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Highlighter{cache: cache, detect: detect}
}

// Cache returns the backing cache.
func (h *Highlighter) Cache() *Cache {
	return h.cache
}

// Spans returns the spans for key, tokenizing on a cache miss.
func (h *Highlighter) Spans(key Key) []Span {
	if spans, ok := h.cache.Get(key); ok {
		return spans
	}
	spans := Tokenize(key)
	h.cache.Put(key, spans)
	return spans
}

// Block returns the spans of a code block. ok is false for other blocks.
func (h *Highlighter) Block(b mdast.Block) (spans []Span, ok bool) {
	key, ok := KeyFor(b, h.detect)
	if !ok {
		return nil, false
	}
	return h.Spans(key), true
}

// Prefetch tokenizes the code blocks inside every block that changes marks
// for rebuilding, so the renderer finds them cached. It returns the number
// of code blocks that were not already cached.
func (h *Highlighter) Prefetch(doc []mdast.Block, changes []blockdiff.Change) int {
	tokenized := 0
	for _, c := range changes {
		if c.Op != blockdiff.OpRebuild || c.NewIndex < 0 || c.NewIndex >= len(doc) {
			continue
		}
		for _, key := range Keys(doc[c.NewIndex:c.NewIndex+1], h.detect) {
			if _, ok := h.cache.Get(key); ok {
				continue
			}
			h.cache.Put(key, Tokenize(key))
			tokenized++
		}
	}
	return tokenized
}
