// Package nav provides the imperative navigation stack consumed by the
// transition coordinator.
//
// The stack owns navigation history (push / replace-top / pop), validates
// targets against a registered screen set, and notifies focus subscribers
// whenever a screen becomes the visible top of the stack. It performs no
// animation; sequencing a fade before a mutation is the transition
// package's job.
package nav
