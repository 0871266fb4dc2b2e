// Package resource implements the Controller that bounds what running scans
// may consume.
//
// The Controller governs three resources:
//
//   - Memory: page buffers reserved before a pull fills them
//   - Drivers: the number of operators pulling concurrently
//   - Rows: a token bucket on rows emitted per second
//
// # Memory
//
// A weighted semaphore enforces the hard limit and an atomic counter tracks
// usage. Operators reserve their page buffer with WaitMemory, which waits for
// peers to release memory and fails only when one page exceeds the whole limit:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.WaitMemory(ctx, resource.PageBytes(pageSize)); err != nil {
//	    // ErrMemoryLimitExceeded or ctx.Err()
//	}
//	defer rc.ReleaseMemory(resource.PageBytes(pageSize))
//
// AcquireMemory is the non-blocking variant used by caches, which skip work
// instead of waiting.
//
// # Drivers
//
//	if err := rc.AcquireDriver(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseDriver()
//
// # Row Throughput
//
//	if err := rc.WaitRows(ctx, page.Len()); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
