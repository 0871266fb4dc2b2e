package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_WaitMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.WaitMemory(t.Context(), 100))

	done := make(chan error, 1)
	go func() { done <- c.WaitMemory(t.Context(), 60) }()

	select {
	case err := <-done:
		t.Fatalf("WaitMemory returned %v while the budget was held", err)
	case <-time.After(20 * time.Millisecond):
	}

	c.ReleaseMemory(100)
	require.NoError(t, <-done)
	assert.Equal(t, int64(60), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitMemory(ctx, 50), context.DeadlineExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())

	// A request beyond the whole limit can never be served.
	assert.ErrorIs(t, c.WaitMemory(t.Context(), 101), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_Drivers(t *testing.T) {
	c := NewController(Config{MaxConcurrentDrivers: 2})

	require.NoError(t, c.AcquireDriver(t.Context()))
	require.NoError(t, c.AcquireDriver(t.Context()))
	assert.Equal(t, int64(2), c.ActiveDrivers())

	assert.False(t, c.TryAcquireDriver())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireDriver(ctx), context.DeadlineExceeded)

	c.ReleaseDriver()
	assert.True(t, c.TryAcquireDriver())
	assert.Equal(t, int64(2), c.ActiveDrivers())
}

func TestController_DefaultDrivers(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxConcurrentDrivers)
}

func TestController_Rows(t *testing.T) {
	c := NewController(Config{RowsPerSecond: 10})

	assert.True(t, c.TryRows(10))
	assert.False(t, c.TryRows(5))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.WaitRows(ctx, 10))

	assert.Equal(t, int64(10), c.RowsEmitted())
}

func TestController_UnlimitedRows(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.WaitRows(t.Context(), 1_000_000))
	assert.True(t, c.TryRows(1_000_000))
	assert.Equal(t, int64(2_000_000), c.RowsEmitted())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireMemory(10))
	require.NoError(t, c.WaitMemory(t.Context(), 10))
	c.ReleaseMemory(10)
	require.NoError(t, c.AcquireDriver(t.Context()))
	assert.True(t, c.TryAcquireDriver())
	c.ReleaseDriver()
	require.NoError(t, c.WaitRows(t.Context(), 10))
	assert.True(t, c.TryRows(10))
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())
	assert.Zero(t, c.ActiveDrivers())
	assert.Zero(t, c.RowsEmitted())
	assert.Equal(t, Config{}, c.Config())
}

func TestPageBytes(t *testing.T) {
	assert.Zero(t, PageBytes(0))
	assert.Zero(t, PageBytes(-3))
	assert.Equal(t, int64(10*RowBytes), PageBytes(10))
}
