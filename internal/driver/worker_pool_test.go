package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()
	assert.Equal(t, 4, pool.Size())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(context.Background(), func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(100), ran.Load())
}

func TestWorkerPool_DefaultSize(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()
	assert.Positive(t, pool.Size())
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Close()
	pool.Close()

	err := pool.Submit(context.Background(), func() {})
	require.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_SubmitCancelled(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy the worker and fill the queue.
	require.NoError(t, pool.Submit(context.Background(), func() { <-block }))
	require.Eventually(t, func() bool { return len(pool.workCh) == 0 }, time.Second, time.Millisecond)
	for i := 0; i < cap(pool.workCh); i++ {
		require.NoError(t, pool.Submit(context.Background(), func() {}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPool_CloseDrainsQueue(t *testing.T) {
	pool := NewWorkerPool(1)

	var ran atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() { ran.Add(1) }))
	}
	pool.Close()
	assert.Equal(t, int32(2), ran.Load())
}
