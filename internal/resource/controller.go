package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// RowBytes is the accounting size of a single buffered row.
const RowBytes = 64

// PageBytes returns the number of bytes reserved for a page of n rows.
func PageBytes(n int) int64 {
	if n <= 0 {
		return 0
	}
	return int64(n) * RowBytes
}

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for buffered pages.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`

	// MaxConcurrentDrivers is the maximum number of operators pulling at once.
	// If 0, defaults to 1.
	MaxConcurrentDrivers int64 `yaml:"max_concurrent_drivers"`

	// RowsPerSecond caps emitted rows across all operators.
	// If 0, unlimited.
	RowsPerSecond int64 `yaml:"rows_per_second"`
}

// Controller manages resources shared by the operators of a scan.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	driverSem *semaphore.Weighted
	drivers   atomic.Int64

	rowLimiter *rate.Limiter
	rows       atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentDrivers <= 0 {
		cfg.MaxConcurrentDrivers = 1
	}

	c := &Controller{
		cfg:       cfg,
		driverSem: semaphore.NewWeighted(cfg.MaxConcurrentDrivers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.RowsPerSecond > 0 {
		c.rowLimiter = rate.NewLimiter(rate.Limit(cfg.RowsPerSecond), int(cfg.RowsPerSecond))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// WaitMemory reserves memory, blocking until peers release enough of it or
// ctx is done. A request larger than the whole limit can never be served and
// returns ErrMemoryLimitExceeded immediately.
func (c *Controller) WaitMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return ErrMemoryLimitExceeded
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireDriver reserves a driver slot, blocking until one is free or ctx is done.
func (c *Controller) AcquireDriver(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.driverSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.drivers.Add(1)
	return nil
}

// TryAcquireDriver attempts to reserve a driver slot without blocking.
func (c *Controller) TryAcquireDriver() bool {
	if c == nil {
		return true
	}
	if !c.driverSem.TryAcquire(1) {
		return false
	}
	c.drivers.Add(1)
	return true
}

// ReleaseDriver releases a driver slot.
func (c *Controller) ReleaseDriver() {
	if c == nil {
		return
	}
	c.drivers.Add(-1)
	c.driverSem.Release(1)
}

// ActiveDrivers returns the number of driver slots currently held.
func (c *Controller) ActiveDrivers() int64 {
	if c == nil {
		return 0
	}
	return c.drivers.Load()
}

// WaitRows waits until the row limit allows n more rows.
// Requests larger than the burst are split.
func (c *Controller) WaitRows(ctx context.Context, n int) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.rowLimiter != nil {
		burst := c.rowLimiter.Burst()
		for left := n; left > 0; left -= burst {
			if err := c.rowLimiter.WaitN(ctx, min(left, burst)); err != nil {
				return err
			}
		}
	}
	c.rows.Add(int64(n))
	return nil
}

// TryRows attempts to take n row tokens without blocking.
func (c *Controller) TryRows(n int) bool {
	if c == nil || n <= 0 {
		return true
	}
	if c.rowLimiter != nil && !c.rowLimiter.AllowN(time.Now(), n) {
		return false
	}
	c.rows.Add(int64(n))
	return true
}

// RowsEmitted returns the number of rows accounted through WaitRows and TryRows.
func (c *Controller) RowsEmitted() int64 {
	if c == nil {
		return 0
	}
	return c.rows.Load()
}
