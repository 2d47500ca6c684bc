// Package transition implements the dissolve transition: every programmatic
// navigation is presented as a fade-to-transparent before the navigation
// stack mutates, and the destination or returned-to screen always arrives
// fully visible.
//
// # Components
//
//   - [Value] — a single owned, atomically readable opacity in [0,1].
//   - [Driver] — time-driven interpolation toward a target with a
//     completion callback ([TickerDriver] is the real implementation).
//   - [Coordinator] — the per-screen single-flight state machine
//     (Idle → FadingOut → Navigated) that sequences fade, stack mutation,
//     opacity pinning, and focus reset.
//
// # Concurrency
//
// At most one transition is in flight per screen instance; re-entrant
// triggers while a fade runs are ignored, which is what prevents double
// navigation from rapid repeated taps. A focus event arriving mid-fade
// never resets opacity: the reset applies only on regaining focus.
package transition
