// Package mindwise provides the session-lifecycle and screen-transition core
// for the MindWise guided-therapy client: a Redis-backed durable session
// store with strict persistence-before-activation ordering, and a dissolve
// transition coordinator for animated navigation-stack mutations.
//
// The package is designed for event-driven client workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build], and session mutations are serialized end to end.
//
// # Architecture boundaries
//
// mindwise is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SessionSnapshot, AuditEvent, MetricsSnapshot). All
// internal coordination — provisioning dispatch, audit dispatch, metrics —
// lives under internal/ and is never exported. Durable key-value access
// lives in keyval, screen transitions in transition, and the navigation
// stack in nav.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal dispatchers, or storage key layouts in
//     its public API.
//   - Interpret the session token. The token is an opaque bearer credential;
//     only its presence carries meaning.
//   - Let notification-identity provisioning failures affect session
//     correctness. The provisioning channel is best-effort by contract.
//
// # Ordering contract
//
// SignIn and SignUp complete the durable write before any in-memory state
// changes, so a crash between the two steps never leaves memory ahead of
// storage. SignOut deletes durable keys before clearing memory for the same
// reason. There is no reconciliation pass; consistency comes from ordering.
package mindwise
