// Package monitor observes running source operators from outside their
// driving goroutines.
//
// The Collector only ever reads the immutable snapshots operators publish, so
// it never races with a pull in flight. It exposes those snapshots directly,
// folded into a scan-wide summary, and as Prometheus metrics.
package monitor
