package slicescan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/slicescan/internal/archive"
	"github.com/hupe1980/slicescan/internal/driver"
	"github.com/hupe1980/slicescan/internal/monitor"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/internal/scheduler"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
)

// ErrNoArchive is returned by archive reads on a Scanner without an archive.
var ErrNoArchive = errors.New("no archive configured")

// Scanner schedules and runs scans over one index.
// It is safe for concurrent use; concurrent scans share its resource limits.
type Scanner struct {
	reader    Reader
	opts      options
	sched     *scheduler.SliceScheduler
	collector *monitor.Collector
	archive   *archive.Archive
	rc        *resource.Controller
}

// New creates a Scanner reading from reader.
func New(reader Reader, optFns ...Option) (*Scanner, error) {
	if reader == nil {
		return nil, ErrNilReader
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, opts.pageSize)
	}

	s := &Scanner{
		reader:    reader,
		opts:      opts,
		sched:     scheduler.New(),
		collector: monitor.NewCollector(),
	}

	if opts.resources != nil {
		s.rc = resource.NewController(*opts.resources)
	}

	if opts.archiveStore != nil {
		s.archive = archive.New(opts.archiveStore,
			archive.WithCompression(opts.compression),
			archive.WithLogger(opts.logger.Logger),
		)
	}

	if opts.registry != nil {
		if err := opts.registry.Register(s.collector); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Scan schedules req, runs one operator per slice and forwards every page to
// sink, which may be nil.
//
// Failures of single operators do not stop the others. If any operator failed,
// the returned error wraps ErrPartialFailure and the report is still complete.
func (s *Scanner) Scan(ctx context.Context, req Request, sink Sink) (Report, error) {
	start := time.Now()

	scanID := req.ID
	if scanID == "" {
		scanID = uuid.NewString()
	}
	logger := s.opts.logger.WithScan(scanID)
	report := Report{ScanID: scanID}

	finish := func(err error) (Report, error) {
		report.Duration = time.Since(start)
		s.opts.metricsCollector.RecordScan(len(report.Slices), report.Duration, err)
		logger.LogScan(ctx, report, err)
		return report, err
	}

	if err := ctx.Err(); err != nil {
		return finish(fmt.Errorf("%w: %w", ErrCancelled, err))
	}

	assigned, err := s.sched.Schedule(req.Shards, req.Parallelism)
	if err != nil {
		return finish(translateError(err))
	}
	report.Slices = assigned
	logger.LogScanStarted(ctx, len(req.Shards), len(assigned), req.Parallelism)

	ops := make([]*operator.SourceOperator, 0, len(assigned))
	for _, sl := range assigned {
		op, err := operator.New([]model.Slice{sl}, s.reader,
			operator.WithPageSize(s.opts.pageSize),
			operator.WithQueries(req.Queries...),
			operator.WithGate(s.opts.gate),
			operator.WithLogger(logger.WithSlice(sl).Logger),
			operator.WithController(s.rc),
			operator.WithMetricsObserver(metricsObserver{c: s.opts.metricsCollector}),
		)
		if err != nil {
			return finish(translateError(err))
		}
		ops = append(ops, op)
	}

	d := driver.New(
		driver.WithWorkers(s.opts.workers),
		driver.WithController(s.rc),
		driver.WithCollector(s.collector),
		driver.WithLogger(logger.Logger),
	)
	results, runErr := d.Run(ctx, ops, sink)

	var failures []error
	report.Operators = make([]OperatorReport, len(results))
	for i, r := range results {
		rep := OperatorReport{
			ID:     r.OperatorID,
			Slice:  assigned[i],
			State:  r.State,
			Status: r.Status,
			Pages:  r.Pages,
			Rows:   r.Rows,
			Err:    translateError(r.Err),
		}
		report.Operators[i] = rep
		report.Rows += r.Rows

		switch rep.State {
		case StateFailed:
			report.Failed++
			failures = append(failures, rep.Err)
		case StateCancelled:
			report.Cancelled++
			var sinkErr *driver.SinkError
			if errors.As(r.Err, &sinkErr) {
				failures = append(failures, sinkErr)
			}
		}
		logger.LogOperator(ctx, rep)
	}
	report.Summary = status.Aggregate(statusesOf(report.Operators)...)

	if s.archive != nil {
		flushStart := time.Now()
		key, err := s.archive.Flush(context.WithoutCancel(ctx), scanID, report.Statuses())
		logger.LogArchive(ctx, key, time.Since(flushStart), err)
		if err != nil {
			return finish(fmt.Errorf("archive scan %s: %w", scanID, err))
		}
		report.ArchiveKey = key
	}

	switch {
	case len(failures) > 0:
		return finish(fmt.Errorf("%w: %d of %d operators: %w",
			ErrPartialFailure, len(failures), len(results), errors.Join(failures...)))
	case runErr != nil:
		return finish(fmt.Errorf("%w: %w", ErrCancelled, runErr))
	case report.Cancelled > 0:
		if cause := context.Cause(ctx); cause != nil {
			return finish(fmt.Errorf("%w: %w", ErrCancelled, cause))
		}
		return finish(ErrCancelled)
	}
	return finish(nil)
}

func statusesOf(ops []OperatorReport) []status.Status {
	out := make([]status.Status, len(ops))
	for i, op := range ops {
		out[i] = op.Status
	}
	return out
}

// Statuses returns the published statuses of all running operators.
// Safe to call from any goroutine while scans are in progress.
func (s *Scanner) Statuses() map[string]status.Status {
	return s.collector.Statuses()
}

// Summary folds the published statuses of all running operators into one.
func (s *Scanner) Summary() status.Status {
	return s.collector.Summary()
}

// Watch calls fn with the published statuses every interval until ctx is done.
// A non-positive interval returns ErrInvalidInterval.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, fn func(map[string]status.Status)) error {
	return translateError(s.collector.Poll(ctx, interval, fn))
}

// Latest returns the archived aggregate status of a scan.
func (s *Scanner) Latest(ctx context.Context, scanID string) (status.Status, error) {
	if s.archive == nil {
		return status.Status{}, ErrNoArchive
	}
	st, _, err := s.archive.Latest(ctx, scanID)
	return st, err
}

// History returns the archived status keys of a scan.
func (s *Scanner) History(ctx context.Context, scanID string) ([]string, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.List(ctx, scanID)
}

// LoadStatus reads one archived status by key.
func (s *Scanner) LoadStatus(ctx context.Context, key string) (status.Status, error) {
	if s.archive == nil {
		return status.Status{}, ErrNoArchive
	}
	return s.archive.Load(ctx, key)
}

// SchedulerStats reports how many scans were scheduled and slices issued.
func (s *Scanner) SchedulerStats() (scans, slices uint64) {
	st := s.sched.Stats()
	return st.Scans, st.SlicesIssued
}

// Close unregisters the scanner's metrics. Running scans are not affected.
func (s *Scanner) Close() error {
	if s.opts.registry != nil {
		s.opts.registry.Unregister(s.collector)
	}
	return nil
}
