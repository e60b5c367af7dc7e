package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/fsutil"
	"github.com/yaklabco/mdstream/pkg/replay"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// Runner replays files concurrently through sessions backed by one parser.
type Runner struct {
	// Parser is shared by all workers and must be safe for concurrent use.
	Parser stream.Parser
}

// New creates a new Runner with the given parser.
func New(parser stream.Parser) *Runner {
	return &Runner{Parser: parser}
}

// Run discovers files under opts.Paths and replays them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Replays files concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logging.FromContext(ctx).Debug("replaying files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts.Replay)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order; collect by path and emit in file order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome, opts replay.Options) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := r.ReplayFile(ctx, path, opts)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// ReplayFile reads and replays a single file.
func (r *Runner) ReplayFile(ctx context.Context, path string, opts replay.Options) FileOutcome {
	logger := logging.FromContext(ctx).With(logging.FieldPath, path)
	outcome := FileOutcome{Path: path}

	text, info, err := fsutil.ReadText(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	report, err := replay.Run(logging.WithLogger(ctx, logger), r.Parser, text, opts)
	if err != nil {
		outcome.Error = fmt.Errorf("replay %s: %w", path, err)
		return outcome
	}
	outcome.Report = report

	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		outcome.Error = err
		outcome.Report = nil
		return outcome
	}
	if modified {
		logger.Warn("file changed during replay")
		outcome.Skipped = true
	}

	return outcome
}
