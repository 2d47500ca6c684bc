// Package internal groups helper packages that are intentionally private to
// the mindwise module.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - provision — best-effort notification-identity dispatch
//   - metrics — lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public mindwise API except through
//     explicit aliases in the root package.
//   - Be imported by any package outside this module.
package internal
