// Package settings provides the dynamic enable/disable signals consulted by
// source operators.
//
// A Gate exposes two independently toggleable flags, recording and tracing,
// plus an allow-list predicate for agent configuration keys. Operators read the
// flags lazily on every pull, so a toggle takes effect mid-scan without a
// restart.
//
// Dynamic is the in-process implementation. It consumes cluster-style keys:
//
//	telemetry.metrics.enabled          recording flag
//	tracing.apm.enabled                tracing flag
//	tracing.apm.names.include          comma-separated list
//	tracing.apm.names.exclude          comma-separated list
//	tracing.apm.sanitize_field_names   comma-separated list
//	tracing.apm.agent.<key>            agent setting, checked against the allow-list
package settings
