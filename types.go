package slicescan

import (
	"context"
	"time"

	"github.com/hupe1980/slicescan/internal/archive"
	"github.com/hupe1980/slicescan/internal/driver"
	"github.com/hupe1980/slicescan/internal/index"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
)

// Reader is the storage port operators read segments and matches from.
type Reader = index.Reader

// SegmentInfo describes one segment of a shard.
type SegmentInfo = index.SegmentInfo

// MemoryIndex is an in-memory Reader.
type MemoryIndex = index.Memory

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex { return index.NewMemory() }

// MatchAll is the query matching every document.
const MatchAll = index.MatchAll

// State is the lifecycle state of an operator.
type State = operator.State

// Operator lifecycle states.
const (
	StateNotStarted = operator.NotStarted
	StateRunning    = operator.Running
	StateExhausted  = operator.Exhausted
	StateFailed     = operator.Failed
	StateCancelled  = operator.Cancelled
)

// ResourceConfig holds the limits shared by the operators of a scan.
type ResourceConfig = resource.Config

// Compression selects how archived statuses are compressed.
type Compression = archive.Compression

// Archive compression modes.
const (
	CompressionNone = archive.CompressionNone
	CompressionLZ4  = archive.CompressionLZ4
	CompressionZstd = archive.CompressionZstd
)

// Sink receives pages. It is called concurrently from several workers.
type Sink = driver.Sink

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, operatorID string, page *model.Page) error

// Consume implements Sink.
func (f SinkFunc) Consume(ctx context.Context, operatorID string, page *model.Page) error {
	return f(ctx, operatorID, page)
}

// Request describes a scan.
type Request struct {
	// ID names the scan. Defaults to a random UUID.
	ID string
	// Shards to scan.
	Shards []model.ShardDescriptor
	// Parallelism is the requested number of slices.
	Parallelism int
	// Queries are combined conjunctively. Empty means match all.
	Queries []string
}

// OperatorReport is the outcome of one operator.
type OperatorReport struct {
	ID     string
	Slice  model.Slice
	State  State
	Status status.Status
	Pages  int
	Rows   int
	Err    error
}

// Report is the outcome of a scan.
type Report struct {
	ScanID     string
	Slices     []model.Slice
	Operators  []OperatorReport
	Summary    status.Status
	Rows       int
	Failed     int
	Cancelled  int
	ArchiveKey string
	Duration   time.Duration
}

// Statuses returns the final status of every operator keyed by operator id.
func (r Report) Statuses() map[string]status.Status {
	out := make(map[string]status.Status, len(r.Operators))
	for _, op := range r.Operators {
		out[op.ID] = op.Status
	}
	return out
}
