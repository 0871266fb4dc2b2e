package operator

import "time"

// MetricsObserver receives operator events.
type MetricsObserver interface {
	// OnPull is called after every pull that reached the index, including
	// failed ones. rows is zero when no page was produced.
	OnPull(duration time.Duration, rows int, err error)

	// OnSliceCompleted is called when a slice has been fully scanned.
	OnSliceCompleted(slice int)

	// OnStateChange is called on every lifecycle transition.
	OnStateChange(from, to State)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnPull(time.Duration, int, error) {}
func (NoopMetricsObserver) OnSliceCompleted(int)             {}
func (NoopMetricsObserver) OnStateChange(State, State)       {}
