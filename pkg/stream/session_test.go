package stream_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/parser/goldmark"
	"github.com/yaklabco/mdstream/pkg/stream"
)

//nolint:gochecknoglobals // shared read-only parser
var parser = goldmark.New(goldmark.FlavorGFM)

const document = `# Release notes

The parser now streams plain words without reparsing anything at all.

- faster appends
- [x] math support like $a^2 + b^2$

` + "```go\nfmt.Println(\"done\")\n```" + `

| op | meaning |
| -- | ------- |
| keep | reuse |

Thanks for reading and for all the feedback on the earlier releases
`

func chunks(s string, size int) []string {
	var out []string
	for len(s) > 0 {
		n := min(size, len(s))
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

// requireKeptBlocksEqual checks that every keep in changes pairs equal blocks.
func requireKeptBlocksEqual(t *testing.T, old, updated []mdast.Block, changes []blockdiff.Change) {
	t.Helper()

	require.NoError(t, blockdiff.Validate(changes, len(old), len(updated)))
	for _, c := range changes {
		if c.Op == blockdiff.OpKeep {
			require.True(t, old[c.OldIndex].Equal(updated[c.NewIndex]), "%s pairs different blocks", c)
		}
	}
}

func TestSession_AppendMatchesFullParse(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 3, 9, 64} {
		session := stream.NewSession(parser, stream.Options{})
		used := map[stream.Strategy]int{}
		var previous []mdast.Block

		for _, chunk := range chunks(document, size) {
			update, err := session.Append(chunk)
			require.NoError(t, err)
			used[update.Strategy]++

			snap := session.Snapshot()
			full, fullRanges := parser.ParseWithRanges(snap.Text)
			if diff := cmp.Diff(full, update.Result, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("size %d: %s update for %q differs (-full +update):\n%s", size, update.Strategy, snap.Text, diff)
			}
			if diff := cmp.Diff(fullRanges, update.Ranges, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("size %d: %s ranges for %q differ:\n%s", size, update.Strategy, snap.Text, diff)
			}
			requireKeptBlocksEqual(t, previous, update.Result.Document, update.Changes)
			previous = update.Result.Document
		}

		require.Equal(t, document, session.Snapshot().Text)
		assert.Positive(t, used[stream.StrategyFull], "size %d", size)
		if size < 64 {
			assert.Positive(t, used[stream.StrategyFastPath], "size %d", size)
			assert.Positive(t, used[stream.StrategyIncremental], "size %d", size)
		}
	}
}

func TestSession_LinkReferenceDefinitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		incremental bool
	}{
		{
			name: "definition syntax in code",
			doc: "Intro words\n\n```python\ndef f() -> list[int]:\n    return []\n```\n\n" +
				"One more paragraph\n\nAnother paragraph\n\nA closing paragraph with plain words\n",
			incremental: true,
		},
		{
			name: "definitions before and after use",
			doc: "[docs]: https://example.com/docs\n\nRead [docs] first\n\nThen [api]\n\n" +
				"More words here\n\n[api]: https://example.com/api\n",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			session := stream.NewSession(parser, stream.Options{})
			used := map[stream.Strategy]int{}
			for _, chunk := range chunks(testCase.doc, 3) {
				update, err := session.Append(chunk)
				require.NoError(t, err)
				used[update.Strategy]++

				snap := session.Snapshot()
				full, fullRanges := parser.ParseWithRanges(snap.Text)
				if diff := cmp.Diff(full, update.Result, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("%s update for %q differs (-full +update):\n%s", update.Strategy, snap.Text, diff)
				}
				if diff := cmp.Diff(fullRanges, update.Ranges, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("%s ranges for %q differ:\n%s", update.Strategy, snap.Text, diff)
				}
			}

			assert.Positive(t, used[stream.StrategyFastPath])
			if testCase.incremental {
				assert.Positive(t, used[stream.StrategyIncremental])
			} else {
				assert.Zero(t, used[stream.StrategyIncremental])
			}
		})
	}
}

func TestSession_FirstAppendIsFullParse(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})
	update, err := session.Append("Hello")
	require.NoError(t, err)

	assert.Equal(t, stream.StrategyFull, update.Strategy)
	assert.Equal(t, incremental.SkipEmptyPrevious, update.SkipReason)
	assert.Equal(t, []blockdiff.Change{blockdiff.Rebuild(0)}, update.Changes)
}

func TestSession_FastPathChanges(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})
	_, err := session.Append("# Title\n\nHello")
	require.NoError(t, err)

	update, err := session.Append(" world")
	require.NoError(t, err)

	assert.Equal(t, stream.StrategyFastPath, update.Strategy)
	assert.Equal(t, 1, update.StablePrefix)
	assert.Equal(t, []blockdiff.Change{
		blockdiff.Keep(0, 0), blockdiff.Remove(1), blockdiff.Rebuild(1),
	}, update.Changes)
	assert.Equal(t, "Hello world", mdast.PlainText(update.Result.Document[1].Inlines))
}

func TestSession_EmptyAppend(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})
	_, err := session.Append("Alpha\n\nBravo")
	require.NoError(t, err)

	update, err := session.Append("")
	require.NoError(t, err)
	assert.Equal(t, stream.StrategyNone, update.Strategy)
	assert.True(t, blockdiff.Summarize(update.Changes).Unchanged())
	assert.Len(t, update.Changes, 2)
}

func TestSession_Extend(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})
	_, err := session.Extend("Alpha")
	require.NoError(t, err)

	update, err := session.Extend("Alpha beta")
	require.NoError(t, err)
	assert.Equal(t, stream.StrategyFastPath, update.Strategy)

	_, err = session.Extend("Gamma")
	require.ErrorIs(t, err, stream.ErrNotAppend)
	assert.Equal(t, "Alpha beta", session.Snapshot().Text, "rejected text must not change the session")
}

func TestSession_Replace(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})
	_, err := session.Append("A\n\nB\n\nC")
	require.NoError(t, err)

	update, err := session.Replace("A\n\nC")
	require.NoError(t, err)

	assert.Equal(t, stream.StrategyFull, update.Strategy)
	assert.Equal(t, []blockdiff.Change{
		blockdiff.Keep(0, 0), blockdiff.Remove(1), blockdiff.Keep(2, 1),
	}, update.Changes)
	assert.Equal(t, "A\n\nC", session.Snapshot().Text)
}

func TestSession_MaxBytes(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{MaxBytes: 8})
	_, err := session.Append("12345")
	require.NoError(t, err)

	_, err = session.Append("6789")
	require.ErrorIs(t, err, stream.ErrTooLarge)
	assert.Equal(t, 5, session.Len())

	_, err = session.Replace(strings.Repeat("x", 9))
	require.ErrorIs(t, err, stream.ErrTooLarge)
}

func TestSession_DisabledStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts stream.Options
		want stream.Strategy
	}{
		{"default", stream.Options{}, stream.StrategyFastPath},
		{"no fast path", stream.Options{DisableFastPath: true}, stream.StrategyIncremental},
		{"neither", stream.Options{DisableFastPath: true, DisableIncremental: true}, stream.StrategyFull},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			session := stream.NewSession(parser, testCase.opts)
			_, err := session.Append("A\n\nB\n\nC\n\nD\n\nE")
			require.NoError(t, err)

			update, err := session.Append(" more")
			require.NoError(t, err)
			assert.Equal(t, testCase.want, update.Strategy)
		})
	}
}

func TestSession_LogsStrategy(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	session := stream.NewSession(parser, stream.Options{Logger: logger})
	_, err := session.Append("Alpha")
	require.NoError(t, err)
	_, err = session.Append(" beta")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "document updated")
	assert.Contains(t, out, "strategy=full")
	assert.Contains(t, out, `reason="empty previous text"`)
	assert.Contains(t, out, "strategy=fast-path")
}

func TestSession_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	session := stream.NewSession(parser, stream.Options{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_, err := session.Append("word ")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	snap := session.Snapshot()
	assert.Equal(t, strings.Repeat("word ", 80), snap.Text)
	assert.True(t, parser.Parse(snap.Text).Equal(snap.Result))
}

func TestStrategy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fast-path", stream.StrategyFastPath.String())
	assert.Equal(t, "incremental", stream.StrategyIncremental.String())
	assert.Equal(t, "strategy(9)", stream.Strategy(9).String())
}
