package operator

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/status"
)

var (
	// ErrFinished is returned when Pull is called after a terminal state.
	ErrFinished = errors.New("operator finished")

	// ErrCancelled is returned by the pull that observes cancellation.
	ErrCancelled = errors.New("operator cancelled")

	// ErrNilReader is returned when no index reader is supplied.
	ErrNilReader = errors.New("nil index reader")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("invalid page size")
)

// ScanError reports a storage failure during a pull. It carries the last
// status of the operator, which the failed attempt did not modify.
type ScanError struct {
	OperatorID string
	Slice      model.Slice
	Status     status.Status
	Err        error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("operator %s: scan %s: %v", e.OperatorID, e.Slice, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
