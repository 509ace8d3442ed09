package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/conformit/search"
)

// ErrSearcherRequired is returned when NewRunner is called without a searcher.
var ErrSearcherRequired = errors.New("searcher required")

// Searcher runs a single template search.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// Outcome is the result of one request of a batch.
type Outcome struct {
	Request search.Request
	Result  *search.Result
	Err     error
}

// Runner runs template searches on a worker pool.
type Runner struct {
	searcher       Searcher
	pool           *ants.Pool
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the number of concurrent searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithProgress reports progress to w every reportInterval completed searches.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(r *Runner) error {
		if reportInterval < 1 {
			reportInterval = 1
		}
		r.progress = w
		r.reportInterval = reportInterval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner for searcher.
func NewRunner(searcher Searcher, opts ...Option) (*Runner, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		searcher: searcher,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

// Run executes every request and returns one outcome per request, in request order.
// Failed searches are reported in their outcome; the returned error is non-nil
// only when work could not be scheduled.
func (r *Runner) Run(ctx context.Context, requests []search.Request) ([]Outcome, error) {
	outcomes := make([]Outcome, len(requests))
	if len(requests) == 0 {
		return outcomes, nil
	}

	var tracker *ProgressTracker
	if r.progress != nil {
		tracker = NewProgressTracker(r.progress, len(requests), r.reportInterval)
		tracker.Start()
	}

	var wg sync.WaitGroup
	for i, req := range requests {
		outcomes[i].Request = req
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			outcomes[i].Result, outcomes[i].Err = r.runOne(ctx, req)
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting search for template %q: %w", req.TemplateName, err)
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch search finished", "searches", len(requests), "failed", failed)
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, req search.Request) (*search.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := r.searcher.Search(ctx, req)
	if err != nil {
		r.logger.Warn("search failed", "template", req.TemplateName, "branch", req.Branch, "err", err)
	}
	return result, err
}

// Release releases the worker pool.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
