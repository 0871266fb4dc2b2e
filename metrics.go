package slicescan

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/slicescan/internal/operator"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with external monitoring systems.
// Methods are called concurrently from the operator workers.
type MetricsCollector interface {
	// RecordPull is called after each pull that reached the index.
	// rows is zero when the pull produced no page, err is nil if successful.
	RecordPull(duration time.Duration, rows int, err error)

	// RecordSliceCompleted is called when an operator finished a slice.
	RecordSliceCompleted(slice int)

	// RecordStateChange is called on every operator lifecycle transition.
	RecordStateChange(from, to State)

	// RecordScan is called when a scan ends.
	RecordScan(slices int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPull(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordSliceCompleted(int)             {}
func (NoopMetricsCollector) RecordStateChange(State, State)       {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	PullCount       atomic.Int64
	PullErrors      atomic.Int64
	PullTotalNanos  atomic.Int64
	RowsEmitted     atomic.Int64
	PagesEmitted    atomic.Int64
	SlicesCompleted atomic.Int64
	Exhausted       atomic.Int64
	Failed          atomic.Int64
	Cancelled       atomic.Int64
	ScanCount       atomic.Int64
	ScanErrors      atomic.Int64
	ScanTotalNanos  atomic.Int64
}

// RecordPull implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPull(duration time.Duration, rows int, err error) {
	b.PullCount.Add(1)
	b.PullTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PullErrors.Add(1)
		return
	}
	if rows > 0 {
		b.PagesEmitted.Add(1)
		b.RowsEmitted.Add(int64(rows))
	}
}

// RecordSliceCompleted implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSliceCompleted(int) {
	b.SlicesCompleted.Add(1)
}

// RecordStateChange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStateChange(_, to State) {
	switch to {
	case StateExhausted:
		b.Exhausted.Add(1)
	case StateFailed:
		b.Failed.Add(1)
	case StateCancelled:
		b.Cancelled.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(_ int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PullCount:       b.PullCount.Load(),
		PullErrors:      b.PullErrors.Load(),
		PullAvgNanos:    avg(b.PullTotalNanos.Load(), b.PullCount.Load()),
		RowsEmitted:     b.RowsEmitted.Load(),
		PagesEmitted:    b.PagesEmitted.Load(),
		SlicesCompleted: b.SlicesCompleted.Load(),
		Exhausted:       b.Exhausted.Load(),
		Failed:          b.Failed.Load(),
		Cancelled:       b.Cancelled.Load(),
		ScanCount:       b.ScanCount.Load(),
		ScanErrors:      b.ScanErrors.Load(),
		ScanAvgNanos:    avg(b.ScanTotalNanos.Load(), b.ScanCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PullCount       int64
	PullErrors      int64
	PullAvgNanos    int64
	RowsEmitted     int64
	PagesEmitted    int64
	SlicesCompleted int64
	Exhausted       int64
	Failed          int64
	Cancelled       int64
	ScanCount       int64
	ScanErrors      int64
	ScanAvgNanos    int64
}

// metricsObserver forwards operator events to a MetricsCollector.
type metricsObserver struct {
	c MetricsCollector
}

var _ operator.MetricsObserver = metricsObserver{}

func (m metricsObserver) OnPull(d time.Duration, rows int, err error) { m.c.RecordPull(d, rows, err) }
func (m metricsObserver) OnSliceCompleted(slice int)                  { m.c.RecordSliceCompleted(slice) }
func (m metricsObserver) OnStateChange(from, to operator.State)       { m.c.RecordStateChange(from, to) }
