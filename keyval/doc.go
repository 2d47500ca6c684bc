// Package keyval provides Redis-backed durable key-value storage for the
// session core.
//
// Values are opaque strings with no TTL: the session token is long-lived
// until explicit sign-out. Every key is namespaced under a fixed prefix so
// multiple client builds can share one Redis without collisions.
//
// # Architecture boundaries
//
// This package owns key layout and transport-error classification. It does
// NOT interpret stored values or enforce session policy — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import the root package (no upward imports).
//   - Cache values in memory; the Engine owns the in-memory session.
//   - Assume atomicity across keys. Callers must tolerate one key being
//     written while another is not.
package keyval
