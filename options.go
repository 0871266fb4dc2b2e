package slicescan

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/slicescan/blobstore"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/settings"
)

type options struct {
	logger           *Logger
	gate             settings.Gate
	pageSize         int
	workers          int
	metricsCollector MetricsCollector
	archiveStore     blobstore.Store
	compression      Compression
	resources        *ResourceConfig
	registry         prometheus.Registerer
}

// Option configures a Scanner.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		gate:             settings.Default,
		pageSize:         operator.DefaultPageSize,
		metricsCollector: NoopMetricsCollector{},
		compression:      CompressionLZ4,
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithGate sets the settings gate operators consult for recording and tracing.
// The gate is read on every pull, so a settings.Dynamic toggles running scans.
func WithGate(g settings.Gate) Option {
	return func(o *options) {
		if g != nil {
			o.gate = g
		}
	}
}

// WithPageSize sets the maximum number of rows per page.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithWorkers sets the number of goroutines pulling operators.
// Defaults to min(slices, GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metricsCollector = c
	}
}

// WithArchive writes the final statuses of every scan to store.
func WithArchive(store blobstore.Store, c Compression) Option {
	return func(o *options) {
		o.archiveStore = store
		o.compression = c
	}
}

// WithResourceConfig sets the limits shared by all operators of a scan.
func WithResourceConfig(cfg ResourceConfig) Option {
	return func(o *options) {
		o.resources = &cfg
	}
}

// WithRegistry registers the live operator metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}
