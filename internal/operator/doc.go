// Package operator implements the pull-based source operator that scans the
// slices assigned to it and emits bounded pages of matching rows.
//
// # Ownership
//
// An operator is driven by exactly one goroutine. Pull and Status touch the
// live counters without locks and must only be called from that goroutine.
// Other goroutines observe progress through Published, which returns the last
// immutable status.Status handed over by the owner, and may call Cancel and
// State at any time.
//
// # Lifecycle
//
//	NotStarted → Running → Exhausted
//	                     ↘ Failed
//	                     ↘ Cancelled
//
// A pull resolves to exactly one of: a non-empty page, exhaustion (nil page,
// nil error), or an error. Counters change only when a pull succeeds.
//
// # Matching
//
// Registered queries are evaluated conjunctively per segment. Without queries
// every document matches and the match-all expression is recorded.
package operator
