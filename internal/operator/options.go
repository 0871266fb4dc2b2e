package operator

import (
	"log/slog"

	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/settings"
)

// DefaultPageSize is the maximum number of rows per page.
const DefaultPageSize = 1024

// Option configures a SourceOperator.
type Option func(*SourceOperator)

// WithID sets the operator identifier. Defaults to a random UUID.
func WithID(id string) Option {
	return func(o *SourceOperator) {
		if id != "" {
			o.id = id
		}
	}
}

// WithPageSize sets the maximum number of rows per page.
func WithPageSize(n int) Option {
	return func(o *SourceOperator) {
		o.pageSize = n
	}
}

// WithQueries sets the filter expressions evaluated against every slice.
// Expressions are opaque; surrounding whitespace is trimmed and duplicates are dropped.
func WithQueries(queries ...string) Option {
	return func(o *SourceOperator) {
		o.queries = append(o.queries, queries...)
	}
}

// WithGate sets the settings gate consulted for recording and tracing.
func WithGate(g settings.Gate) Option {
	return func(o *SourceOperator) {
		if g != nil {
			o.gate = g
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *SourceOperator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithController sets the resource controller for page memory and row throughput.
func WithController(rc *resource.Controller) Option {
	return func(o *SourceOperator) {
		o.rc = rc
	}
}

// WithMetricsObserver sets the metrics observer.
func WithMetricsObserver(m MetricsObserver) Option {
	return func(o *SourceOperator) {
		if m != nil {
			o.metrics = m
		}
	}
}
