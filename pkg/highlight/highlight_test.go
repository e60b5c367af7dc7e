package highlight_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/highlight"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

func TestKey_Hash(t *testing.T) {
	t.Parallel()

	a := highlight.Key{Content: "x := 1", Language: "go"}

	assert.Equal(t, a.Hash(), highlight.Key{Content: "x := 1", Language: "go"}.Hash())
	assert.NotEqual(t, a.Hash(), highlight.Key{Content: "x := 1", Language: "rust"}.Hash())
	assert.NotEqual(t,
		highlight.Key{Content: "b", Language: "a"}.Hash(),
		highlight.Key{Content: "", Language: "ab"}.Hash(),
		"language and content must not run together")
}

func TestKeyFor(t *testing.T) {
	t.Parallel()

	key, ok := highlight.KeyFor(mdast.CodeBlock("golang", "x := 1\n"), true)
	require.True(t, ok)
	assert.Equal(t, highlight.Key{Content: "x := 1\n", Language: "go"}, key)

	key, ok = highlight.KeyFor(mdast.CodeBlock("", "package main\n\nfunc main() {}\n"), true)
	require.True(t, ok)
	assert.Equal(t, "go", key.Language)

	key, ok = highlight.KeyFor(mdast.CodeBlock("", "package main\n\nfunc main() {}\n"), false)
	require.True(t, ok)
	assert.Equal(t, "text", key.Language)

	_, ok = highlight.KeyFor(mdast.Paragraph(mdast.Text("code")), true)
	assert.False(t, ok)
}

func TestKeys_FindsNestedCode(t *testing.T) {
	t.Parallel()

	doc := []mdast.Block{
		mdast.CodeBlock("go", "a"),
		mdast.Paragraph(mdast.Code("not a block")),
		mdast.BulletList(mdast.Item(mdast.Paragraph(mdast.Text("item")), mdast.CodeBlock("sh", "b"))),
		mdast.Blockquote(mdast.CodeBlock("js", "c")),
	}

	assert.Equal(t, []highlight.Key{
		{Content: "a", Language: "go"},
		{Content: "b", Language: "bash"},
		{Content: "c", Language: "javascript"},
	}, highlight.Keys(doc, false))
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	spans := highlight.Tokenize(highlight.Key{Content: "package main", Language: "go"})
	assert.Equal(t, []highlight.Span{
		{Start: 0, End: 7, Class: "kn"},
		{Start: 8, End: 12, Class: "nx"},
	}, spans)
}

func TestTokenize_SpansStayInBounds(t *testing.T) {
	t.Parallel()

	tests := []highlight.Key{
		{Content: "x := \"hi\"", Language: "go"},
		{Content: "def f():\n    return 1\n", Language: "python"},
		{Content: "echo $HOME", Language: "bash"},
		{Content: "SELECT 1", Language: "sql"},
		{Content: "", Language: "go"},
	}

	for _, key := range tests {
		t.Run(key.Language+"/"+key.Content, func(t *testing.T) {
			t.Parallel()

			end := 0
			for _, span := range highlight.Tokenize(key) {
				assert.GreaterOrEqual(t, span.Start, end, "spans must be ordered and disjoint")
				assert.Less(t, span.Start, span.End)
				assert.LessOrEqual(t, span.End, len(key.Content))
				assert.NotEmpty(t, span.Class)
				end = span.End
			}
		})
	}
}

func TestTokenize_StringClass(t *testing.T) {
	t.Parallel()

	const code = `x := "hi"`
	spans := highlight.Tokenize(highlight.Key{Content: code, Language: "go"})

	var found bool
	for _, span := range spans {
		if code[span.Start:span.End] == `"hi"` {
			found = true
			assert.Equal(t, "s", span.Class)
		}
	}
	assert.True(t, found, "string literal not reported: %v", spans)
}

func TestTokenize_UnknownLanguageHasNoSpans(t *testing.T) {
	t.Parallel()

	assert.Empty(t, highlight.Tokenize(highlight.Key{Content: "plain words", Language: "no-such-language"}))
	assert.Empty(t, highlight.Tokenize(highlight.Key{Content: "plain words", Language: "text"}))
	assert.False(t, highlight.HasLexer("no-such-language"))
	assert.True(t, highlight.HasLexer("go"))
}

func TestCache_LRU(t *testing.T) {
	t.Parallel()

	cache := highlight.NewCache(2)
	a := highlight.Key{Content: "a", Language: "go"}
	b := highlight.Key{Content: "b", Language: "go"}
	c := highlight.Key{Content: "c", Language: "go"}

	cache.Put(a, []highlight.Span{{Start: 0, End: 1, Class: "a"}})
	cache.Put(b, nil)

	_, ok := cache.Get(a)
	require.True(t, ok)

	cache.Put(c, nil)
	assert.Equal(t, 2, cache.Len())

	_, ok = cache.Get(b)
	assert.False(t, ok, "least recently used entry must be evicted")
	spans, ok := cache.Get(a)
	assert.True(t, ok)
	assert.Equal(t, []highlight.Span{{Start: 0, End: 1, Class: "a"}}, spans)

	assert.Equal(t, highlight.Stats{Hits: 2, Misses: 1, Evictions: 1}, cache.Stats())

	cache.Purge()
	assert.Zero(t, cache.Len())
	_, ok = cache.Get(a)
	assert.False(t, ok)
}

func TestCache_PutReplaces(t *testing.T) {
	t.Parallel()

	cache := highlight.NewCache(1)
	key := highlight.Key{Content: "a", Language: "go"}

	cache.Put(key, []highlight.Span{{Start: 0, End: 1, Class: "x"}})
	cache.Put(key, []highlight.Span{{Start: 0, End: 1, Class: "y"}})

	spans, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, "y", spans[0].Class)
	assert.Equal(t, 1, cache.Len())
	assert.Zero(t, cache.Stats().Evictions)
}

func TestNewCache_DefaultCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, highlight.DefaultCacheSize, highlight.NewCache(0).Capacity())
	assert.Equal(t, 3, highlight.NewCache(3).Capacity())
}

func TestCache_ConcurrentUse(t *testing.T) {
	t.Parallel()

	cache := highlight.NewCache(8)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				key := highlight.Key{Content: fmt.Sprint(i * j % 12), Language: "go"}
				if _, ok := cache.Get(key); !ok {
					cache.Put(key, nil)
				}
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 8)
}

func TestHighlighter_SpansUsesCache(t *testing.T) {
	t.Parallel()

	h := highlight.New(highlight.NewCache(4), false)
	key := highlight.Key{Content: "package main", Language: "go"}

	first := h.Spans(key)
	second := h.Spans(key)

	assert.Equal(t, first, second)
	assert.Equal(t, highlight.Stats{Hits: 1, Misses: 1}, h.Cache().Stats())

	spans, ok := h.Block(mdast.CodeBlock("go", "package main"))
	assert.True(t, ok)
	assert.Equal(t, first, spans)

	_, ok = h.Block(mdast.ThematicBreak())
	assert.False(t, ok)
}

func TestHighlighter_Prefetch(t *testing.T) {
	t.Parallel()

	h := highlight.New(nil, false)
	doc := []mdast.Block{
		mdast.CodeBlock("go", "package a"),
		mdast.Paragraph(mdast.Text("text")),
		mdast.CodeBlock("go", "package b"),
	}
	changes := []blockdiff.Change{blockdiff.Keep(0, 0), blockdiff.Rebuild(1), blockdiff.Rebuild(2)}

	assert.Equal(t, 1, h.Prefetch(doc, changes))
	assert.Equal(t, 1, h.Cache().Len())
	assert.Zero(t, h.Prefetch(doc, changes), "second prefetch is served from the cache")

	_, ok := h.Cache().Get(highlight.Key{Content: "package a", Language: "go"})
	assert.False(t, ok, "kept blocks are not prefetched")
}
