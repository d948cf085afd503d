package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/ascii-view/internal/api"
	"github.com/ensigniasec/ascii-view/internal/grid"
	"github.com/ensigniasec/ascii-view/internal/layout"
)

const (
	backoffBase = 250 * time.Millisecond
	maxAttempts = 3
	workerCount = 2
	// maxRetryAfter caps the wait a 429 reply can ask for.
	maxRetryAfter = 10 * time.Second
)

// Result is the outcome of converting and fitting one image.
type Result struct {
	Path     string                `json:"path"`
	Rows     int                   `json:"rows"`
	Columns  int                   `json:"columns"`
	Layout   layout.ComputedLayout `json:"layout"`
	Art      string                `json:"art,omitempty"`
	Error    string                `json:"error,omitempty"`
	Duration time.Duration         `json:"duration"`

	Err error `json:"-"`
}

// OK reports whether the image converted.
func (r Result) OK() bool { return r.Err == nil }

// Runner converts many images with a bounded worker pool.
type Runner struct {
	conv    api.Converter
	bounds  layout.ViewportBounds
	columns int

	workerCount   int
	backoffBase   time.Duration
	maxRetryAfter time.Duration
	readFile      func(string) ([]byte, error)
	wait          func(context.Context, time.Duration) error
	onResult      func(Result)
}

// RunnerOption mutates Runner configuration.
type RunnerOption func(*Runner)

// WithWorkers sets the number of concurrent conversions.
func WithWorkers(n int) RunnerOption { //nolint:ireturn
	return func(r *Runner) {
		if n > 0 {
			r.workerCount = n
		}
	}
}

// WithResultNotifier registers a callback invoked as each image finishes, in
// completion order. Callbacks run on worker goroutines.
func WithResultNotifier(fn func(Result)) RunnerOption { //nolint:ireturn
	return func(r *Runner) {
		r.onResult = fn
	}
}

// NewRunner validates bounds and columns and returns a Runner.
func NewRunner(conv api.Converter, bounds layout.ViewportBounds, columns int, opts ...RunnerOption) (*Runner, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if columns < api.MinColumns || columns > api.MaxColumns {
		return nil, fmt.Errorf("%w: columns must be within %d..%d, got %d", api.ErrValidation, api.MinColumns, api.MaxColumns, columns)
	}
	r := &Runner{
		conv:        conv,
		bounds:      bounds,
		columns:     columns,
		workerCount:   workerCount,
		backoffBase:   backoffBase,
		maxRetryAfter: maxRetryAfter,
		readFile:      os.ReadFile,
		wait:          sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run converts every path and returns results in input order. Per-image
// failures are recorded on the Result; only cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	started := time.Now()
	results := make([]Result, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := r.convertOne(ctx, paths[i])
				results[i] = res
				if r.onResult != nil {
					r.onResult(res)
				}
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	return NewSummary(results, started, time.Since(started)), nil
}

func (r *Runner) convertOne(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}
	fail := func(err error) Result {
		res.Err = err
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logrus.Debugf("convert %s failed: %v", path, err)
		return res
	}

	data, err := r.readFile(path)
	if err != nil {
		return fail(err)
	}
	req, err := api.NewConvertRequest(path, data, r.columns)
	if err != nil {
		return fail(err)
	}
	raw, err := r.convertWithRetry(ctx, req)
	if err != nil {
		return fail(err)
	}

	g := grid.Normalize(raw)
	l, err := layout.Fit(g, r.bounds)
	if err != nil {
		return fail(err)
	}
	res.Rows = g.LineCount()
	res.Columns = g.MaxLineLength()
	res.Layout = l
	res.Art = g.String()
	res.Duration = time.Since(start)
	return res
}

// convertWithRetry retries transient failures, honoring Retry-After up to
// maxRetryAfter and doubling the backoff after server errors. The last failed
// attempt returns at once.
func (r *Runner) convertWithRetry(ctx context.Context, req api.ConvertRequest) (string, error) {
	backoff := r.backoffBase
	for attempt := 1; ; attempt++ {
		raw, err := r.conv.Convert(ctx, req)
		if err == nil {
			return raw, nil
		}
		if !api.Retryable(err) || attempt == maxAttempts {
			return "", err
		}

		wait := backoff
		var rl api.RateLimitedError
		if errors.As(err, &rl) && rl.RetryAfterSeconds > 0 {
			wait = min(time.Duration(rl.RetryAfterSeconds)*time.Second, r.maxRetryAfter)
		} else {
			backoff *= 2
		}
		logrus.Debugf("retrying %s in %s: %v", req.Filename, wait, err)
		if err := r.wait(ctx, wait); err != nil {
			return "", err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
