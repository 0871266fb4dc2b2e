// Package driver runs source operators to completion on a fixed pool of
// worker goroutines.
//
// Each operator is pulled by exactly one worker, which owns it for the whole
// run, so operator state is never touched by two goroutines. A failure or
// cancellation of one operator does not affect the others; every operator
// yields its own Result.
package driver
