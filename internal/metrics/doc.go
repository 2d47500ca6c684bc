// Package metrics implements lock-free counters and optional latency
// histograms for the session engine.
//
// # Architecture boundaries
//
// This package owns counter storage and snapshotting. It does NOT decide
// which metrics to record — that responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Allocate on the increment hot path.
//   - Import the root package or any sibling internal package.
package metrics
