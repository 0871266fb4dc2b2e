package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/hupe1980/slicescan/internal/monitor"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
)

// Sink receives the pages produced by operators.
// It is called concurrently from several workers.
type Sink interface {
	Consume(ctx context.Context, operatorID string, page *model.Page) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, operatorID string, page *model.Page) error

// Consume implements Sink.
func (f SinkFunc) Consume(ctx context.Context, operatorID string, page *model.Page) error {
	return f(ctx, operatorID, page)
}

// Discard is a Sink that drops every page.
var Discard Sink = SinkFunc(func(context.Context, string, *model.Page) error { return nil })

// SinkError wraps an error returned by the sink.
type SinkError struct {
	OperatorID string
	Err        error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink rejected page from operator %s: %v", e.OperatorID, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// Result is the outcome of driving one operator.
type Result struct {
	OperatorID string
	Status     status.Status
	State      operator.State
	Pages      int
	Rows       int
	Err        error
}

// Driver drives operators to completion.
type Driver struct {
	workers   int
	rc        *resource.Controller
	collector *monitor.Collector
	logger    *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithWorkers sets the number of worker goroutines. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Driver) { d.workers = n }
}

// WithController bounds the number of operators pulling at once.
func WithController(rc *resource.Controller) Option {
	return func(d *Driver) { d.rc = rc }
}

// WithCollector registers every operator with c for the duration of the run.
func WithCollector(c *monitor.Collector) Option {
	return func(d *Driver) { d.collector = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run pulls every operator until it is exhausted, fails or is cancelled, and
// forwards pages to sink. Results are returned in the order of ops.
//
// Per-operator failures are reported in the results; Run itself only fails
// when ctx is cancelled before all operators were started.
func (d *Driver) Run(ctx context.Context, ops []*operator.SourceOperator, sink Sink) ([]Result, error) {
	if sink == nil {
		sink = Discard
	}

	results := make([]Result, len(ops))
	if len(ops) == 0 {
		return results, nil
	}

	workers := d.workers
	if workers <= 0 || workers > len(ops) {
		workers = min(len(ops), runtime.GOMAXPROCS(0))
	}
	pool := NewWorkerPool(workers)
	defer pool.Close()

	var wg sync.WaitGroup
	var submitErr error

	for i, op := range ops {
		if d.collector != nil {
			d.collector.Register(op)
		}

		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			results[i] = d.drive(ctx, op, sink)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			// Operators never handed to a worker are cancelled in place.
			for j := i; j < len(ops); j++ {
				results[j] = abandon(ops[j], err)
			}
			break
		}
	}

	wg.Wait()

	if d.collector != nil {
		for _, op := range ops {
			d.collector.Unregister(op.ID())
		}
	}

	return results, submitErr
}

// drive runs on a worker goroutine and owns op until it returns.
func (d *Driver) drive(ctx context.Context, op *operator.SourceOperator, sink Sink) Result {
	res := Result{OperatorID: op.ID()}
	logger := d.logger.With("operator", op.ID())

	if err := d.rc.AcquireDriver(ctx); err != nil {
		return abandon(op, err)
	}
	defer d.rc.ReleaseDriver()

	for {
		page, err := op.Pull(ctx)
		if err != nil {
			res.Err = err
			break
		}
		if page == nil {
			break
		}

		res.Pages++
		res.Rows += page.Len()

		if err := sink.Consume(ctx, op.ID(), page); err != nil {
			op.Cancel()
			res.Err = &SinkError{OperatorID: op.ID(), Err: err}
			// Let the operator observe the cancellation.
			_, _ = op.Pull(ctx)
			break
		}
	}

	res.Status = op.Status()
	res.State = op.State()

	switch {
	case res.Err == nil:
		logger.Debug("operator finished", "pages", res.Pages, "rows", res.Rows)
	case errors.Is(res.Err, operator.ErrCancelled):
		logger.Debug("operator cancelled", "pages", res.Pages)
	default:
		logger.Warn("operator failed", "error", res.Err)
	}

	return res
}

// abandon cancels an operator that was never pulled and reports cause.
func abandon(op *operator.SourceOperator, cause error) Result {
	op.Cancel()
	// The pull only moves the operator into its cancelled state.
	_, _ = op.Pull(context.Background())
	return Result{
		OperatorID: op.ID(),
		Status:     op.Status(),
		State:      op.State(),
		Err:        fmt.Errorf("%w: %w", operator.ErrCancelled, cause),
	}
}
