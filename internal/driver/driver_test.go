package driver_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/slicescan/internal/driver"
	"github.com/hupe1980/slicescan/internal/index"
	"github.com/hupe1980/slicescan/internal/monitor"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/internal/scheduler"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
	"github.com/hupe1980/slicescan/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collectSink records every row it receives.
type collectSink struct {
	mu   sync.Mutex
	rows map[string][]model.Row
}

func newCollectSink() *collectSink {
	return &collectSink{rows: make(map[string][]model.Row)}
}

func (s *collectSink) Consume(_ context.Context, id string, p *model.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = append(s.rows[id], p.Rows...)
	return nil
}

func (s *collectSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rows := range s.rows {
		n += len(rows)
	}
	return n
}

func operators(t *testing.T, reader index.Reader, shards []model.ShardDescriptor, parallelism int, opts ...operator.Option) []*operator.SourceOperator {
	t.Helper()
	assigned, err := scheduler.New().Schedule(shards, parallelism)
	require.NoError(t, err)

	ops := make([]*operator.SourceOperator, 0, len(assigned))
	for _, sl := range assigned {
		op, err := operator.New([]model.Slice{sl}, reader, opts...)
		require.NoError(t, err)
		ops = append(ops, op)
	}
	return ops
}

func TestRunExhaustsAll(t *testing.T) {
	shards := testutil.UniformShards(3, 10)
	reader := index.Synthesize(shards, nil, 1)
	ops := operators(t, reader, shards, 6, operator.WithPageSize(3))

	sink := newCollectSink()
	results, err := driver.New(driver.WithWorkers(2)).Run(context.Background(), ops, sink)
	require.NoError(t, err)
	require.Len(t, results, len(ops))

	rows := 0
	for i, r := range results {
		assert.Equal(t, ops[i].ID(), r.OperatorID)
		assert.NoError(t, r.Err)
		assert.Equal(t, operator.Exhausted, r.State)
		assert.Equal(t, 1, r.Status.ProcessedSlices())
		assert.Equal(t, r.Pages, r.Status.PagesEmitted())
		rows += r.Rows
	}
	assert.Equal(t, 30, rows)
	assert.Equal(t, 30, sink.total())

	sum := make([]status.Status, 0, len(results))
	for _, r := range results {
		sum = append(sum, r.Status)
	}
	assert.Equal(t, 1.0, status.Aggregate(sum...).Progress())
}

func TestRunIsolatesFailures(t *testing.T) {
	shards := testutil.UniformShards(3, 10)
	reader := index.NewFaulty(index.Synthesize(shards, nil, 1)).FailShard(shards[1].ID)
	ops := operators(t, reader, shards, 3)

	results, err := driver.New().Run(context.Background(), ops, driver.Discard)
	require.NoError(t, err)

	var failed, exhausted int
	for _, r := range results {
		switch r.State {
		case operator.Failed:
			failed++
			var scanErr *operator.ScanError
			require.ErrorAs(t, r.Err, &scanErr)
			assert.ErrorIs(t, r.Err, index.ErrInjected)
			assert.Equal(t, shards[1].ID, scanErr.Slice.ShardID)
		case operator.Exhausted:
			exhausted++
			assert.Equal(t, 10, r.Rows)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, exhausted)
}

func TestRunSinkError(t *testing.T) {
	shards := testutil.UniformShards(1, 10)
	ops := operators(t, index.Synthesize(shards, nil, 1), shards, 1, operator.WithPageSize(2))

	boom := errors.New("boom")
	sink := driver.SinkFunc(func(context.Context, string, *model.Page) error { return boom })

	results, err := driver.New().Run(context.Background(), ops, sink)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	var sinkErr *driver.SinkError
	require.ErrorAs(t, r.Err, &sinkErr)
	assert.ErrorIs(t, r.Err, boom)
	assert.Equal(t, operator.Cancelled, r.State)
	assert.Equal(t, 1, r.Pages)
	assert.Equal(t, 1, r.Status.PagesEmitted())
}

func TestRunCancelledContext(t *testing.T) {
	shards := testutil.UniformShards(4, 10)
	ops := operators(t, index.Synthesize(shards, nil, 1), shards, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _ := driver.New(driver.WithWorkers(1)).Run(ctx, ops, driver.Discard)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, operator.Cancelled, r.State)
		assert.True(t, operator.IsCancelled(r.Err))
		assert.Equal(t, 0, r.Status.PagesEmitted())
	}
}

func TestRunRespectsDriverLimit(t *testing.T) {
	shards := testutil.UniformShards(4, 20)
	rc := resource.NewController(resource.Config{MaxConcurrentDrivers: 1})
	ops := operators(t, index.Synthesize(shards, nil, 1), shards, 4, operator.WithPageSize(5))

	var peak atomic.Int64
	sink := driver.SinkFunc(func(context.Context, string, *model.Page) error {
		if n := rc.ActiveDrivers(); n > peak.Load() {
			peak.Store(n)
		}
		return nil
	})

	results, err := driver.New(driver.WithWorkers(4), driver.WithController(rc)).Run(context.Background(), ops, sink)
	require.NoError(t, err)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, int64(1), peak.Load())
	assert.Equal(t, int64(0), rc.ActiveDrivers())
}

func TestRunRegistersWithCollector(t *testing.T) {
	shards := testutil.UniformShards(2, 10)
	ops := operators(t, index.Synthesize(shards, nil, 1), shards, 2, operator.WithPageSize(2))
	c := monitor.NewCollector()

	var seen atomic.Int32
	sink := driver.SinkFunc(func(_ context.Context, id string, _ *model.Page) error {
		if _, ok := c.Status(id); ok {
			seen.Add(1)
		}
		return nil
	})

	_, err := driver.New(driver.WithCollector(c)).Run(context.Background(), ops, sink)
	require.NoError(t, err)
	assert.Equal(t, int32(10), seen.Load())
	assert.Equal(t, 0, c.Len())
}

func TestRunEmpty(t *testing.T) {
	results, err := driver.New().Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
