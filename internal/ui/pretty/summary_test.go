package pretty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/runner"
	"github.com/yaklabco/mdstream/pkg/stream"
)

func replayStats() runner.Stats {
	return runner.Stats{
		FilesDiscovered: 3,
		FilesProcessed:  3,
		Bytes:           18_432,
		Steps:           1204,
		Strategies: map[stream.Strategy]int{
			stream.StrategyFastPath:    900,
			stream.StrategyIncremental: 268,
			stream.StrategyFull:        36,
		},
		Changes:  blockdiff.Summary{Kept: 5000, Rebuilt: 1300},
		Duration: 42 * time.Millisecond,
	}
}

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummaryOneLine(replayStats())

	assert.Equal(t, "3 files replayed, 1,204 appends (97% incremental), 18 kB in 42ms\n", result)
}

func TestFormatSummaryOneLine_Failures(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := replayStats()
	stats.FilesProcessed = 1
	stats.FilesDiverged = 1
	stats.FilesErrored = 2

	result := styles.FormatSummaryOneLine(stats)

	assert.Contains(t, result, "1 file replayed")
	assert.Contains(t, result, "1 diverged")
	assert.Contains(t, result, "2 failed")
}

func TestFormatSummaryOneLine_NoFiles(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "No files to replay\n", styles.FormatSummaryOneLine(runner.Stats{}))
}

func TestFormatSummary(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(replayStats())

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Files replayed:")
	assert.Contains(t, result, "18 kB")
	assert.Contains(t, result, "1,204")
	assert.Contains(t, result, "Fast path:")
	assert.Contains(t, result, "5,000")
	assert.Contains(t, result, "Replay matched full parse")
	assert.NotContains(t, result, "Files diverged:")
	assert.NotContains(t, result, "Blocks removed:")
}

func TestFormatSummary_Status(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name   string
		mutate func(*runner.Stats)
		want   string
	}{
		{"diverged", func(s *runner.Stats) { s.FilesDiverged = 1 }, "Streamed parse diverged from full parse"},
		{"errored", func(s *runner.Stats) { s.FilesErrored = 1 }, "Replay finished with errors"},
		{"diverged wins", func(s *runner.Stats) { s.FilesErrored, s.FilesDiverged = 1, 1 }, "diverged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := replayStats()
			tt.mutate(&stats)
			assert.Contains(t, styles.FormatSummary(stats), tt.want)
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "0%", pretty.Percent(0))
	assert.Equal(t, "75%", pretty.Percent(0.75))
	assert.Equal(t, "0 B", pretty.Bytes(-1))
	assert.Equal(t, "1.5 kB", pretty.Bytes(1500))
	assert.Equal(t, "1,234,567", pretty.Count(1234567))
	assert.Equal(t, "1.23s", pretty.Duration(1234567890*time.Nanosecond))
	assert.Equal(t, "42ms", pretty.Duration(42*time.Millisecond))
	assert.Equal(t, "500ns", pretty.Duration(500))
}
