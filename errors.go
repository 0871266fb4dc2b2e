package slicescan

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slicescan/internal/monitor"
	"github.com/hupe1980/slicescan/internal/operator"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/internal/scheduler"
	"github.com/hupe1980/slicescan/model"
)

var (
	// ErrInvalidParallelism is returned for a negative parallelism.
	ErrInvalidParallelism = errors.New("invalid parallelism")

	// ErrDuplicateShard is returned when a request names the same shard twice.
	ErrDuplicateShard = errors.New("duplicate shard")

	// ErrInvalidSlice is returned for a malformed slice.
	ErrInvalidSlice = errors.New("invalid slice")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrCancelled is returned when a scan or operator was cancelled.
	ErrCancelled = errors.New("scan cancelled")

	// ErrMemoryLimitExceeded is returned when page buffers exceed the memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrPartialFailure is returned when at least one operator failed.
	// The report still carries the results of all operators.
	ErrPartialFailure = errors.New("scan partially failed")

	// ErrInvalidInterval is returned by Watch for a non-positive interval.
	ErrInvalidInterval = errors.New("invalid watch interval")

	// ErrNilReader is returned when New is called without an index reader.
	ErrNilReader = errors.New("nil index reader")
)

// ScanError reports a storage failure of one operator. It carries the last
// status of the operator before the failed pull.
type ScanError = operator.ScanError

// IsCancelled reports whether err stems from cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || operator.IsCancelled(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, scheduler.ErrInvalidParallelism):
		return fmt.Errorf("%w: %w", ErrInvalidParallelism, err)
	case errors.Is(err, scheduler.ErrDuplicateShard):
		return fmt.Errorf("%w: %w", ErrDuplicateShard, err)
	case errors.Is(err, model.ErrInvalidSlice):
		return fmt.Errorf("%w: %w", ErrInvalidSlice, err)
	case errors.Is(err, operator.ErrInvalidPageSize):
		return fmt.Errorf("%w: %w", ErrInvalidPageSize, err)
	case errors.Is(err, operator.ErrNilReader):
		return fmt.Errorf("%w: %w", ErrNilReader, err)
	case errors.Is(err, monitor.ErrInvalidInterval):
		return fmt.Errorf("%w: %w", ErrInvalidInterval, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	case operator.IsCancelled(err):
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	return err
}
