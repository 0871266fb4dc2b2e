package monitor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/status"
)

// ErrInvalidInterval is returned by Poll for a non-positive interval.
var ErrInvalidInterval = errors.New("invalid poll interval")

// Source is the read-only view of an operator the collector needs.
// *operator.SourceOperator satisfies it.
type Source interface {
	ID() string
	State() operator.State
	Published() *status.Status
}

// Collector tracks live operators and exposes their published statuses.
type Collector struct {
	sources *xsync.MapOf[string, Source]

	pagesEmitted    *prometheus.Desc
	processedSlices *prometheus.Desc
	progress        *prometheus.Desc
	operators       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		sources: xsync.NewMapOf[string, Source](),

		pagesEmitted: prometheus.NewDesc(
			"slicescan_operator_pages_emitted",
			"Number of pages emitted by the operator",
			[]string{"operator"}, nil,
		),
		processedSlices: prometheus.NewDesc(
			"slicescan_operator_processed_slices",
			"Number of slices the operator has fully processed",
			[]string{"operator"}, nil,
		),
		progress: prometheus.NewDesc(
			"slicescan_operator_slice_progress_ratio",
			"Fraction of the current slice consumed by the operator",
			[]string{"operator"}, nil,
		),
		operators: prometheus.NewDesc(
			"slicescan_operators",
			"Number of registered operators by lifecycle state",
			[]string{"state"}, nil,
		),
	}
}

// Register adds a source. A source with the same id is replaced.
func (c *Collector) Register(src Source) {
	c.sources.Store(src.ID(), src)
}

// Unregister removes a source.
func (c *Collector) Unregister(id string) {
	c.sources.Delete(id)
}

// Len returns the number of registered sources.
func (c *Collector) Len() int {
	return c.sources.Size()
}

// Status returns the last published status of one operator.
func (c *Collector) Status(id string) (status.Status, bool) {
	src, ok := c.sources.Load(id)
	if !ok {
		return status.Status{}, false
	}
	p := src.Published()
	if p == nil {
		return status.Status{}, false
	}
	return *p, true
}

// Statuses returns the published statuses keyed by operator id.
// Operators that have not published yet are omitted.
func (c *Collector) Statuses() map[string]status.Status {
	out := make(map[string]status.Status, c.sources.Size())
	c.sources.Range(func(id string, src Source) bool {
		if p := src.Published(); p != nil {
			out[id] = *p
		}
		return true
	})
	return out
}

// Summary folds all published statuses into one.
func (c *Collector) Summary() status.Status {
	snaps := c.Statuses()
	ids := slices.Sorted(maps.Keys(snaps))
	all := make([]status.Status, 0, len(ids))
	for _, id := range ids {
		all = append(all, snaps[id])
	}
	return status.Aggregate(all...)
}

// States counts registered operators per lifecycle state.
func (c *Collector) States() map[operator.State]int {
	out := make(map[operator.State]int, len(operator.States))
	c.sources.Range(func(_ string, src Source) bool {
		out[src.State()]++
		return true
	})
	return out
}

// Poll calls fn with the published statuses every interval until ctx is done.
func (c *Collector) Poll(ctx context.Context, interval time.Duration, fn func(map[string]status.Status)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(c.Statuses())
		}
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pagesEmitted
	ch <- c.processedSlices
	ch <- c.progress
	ch <- c.operators
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for id, s := range c.Statuses() {
		ch <- prometheus.MustNewConstMetric(c.pagesEmitted, prometheus.GaugeValue, float64(s.PagesEmitted()), id)
		ch <- prometheus.MustNewConstMetric(c.processedSlices, prometheus.GaugeValue, float64(s.ProcessedSlices()), id)
		ch <- prometheus.MustNewConstMetric(c.progress, prometheus.GaugeValue, s.Progress(), id)
	}

	counts := c.States()
	for _, st := range operator.States {
		ch <- prometheus.MustNewConstMetric(c.operators, prometheus.GaugeValue, float64(counts[st]), st.String())
	}
}
