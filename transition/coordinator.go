package transition

import (
	"time"

	"go.uber.org/atomic"
)

// Phase is the transition state of one screen instance.
type Phase int32

const (
	// PhaseIdle means the screen is fully visible and no transition is in
	// flight.
	PhaseIdle Phase = iota
	// PhaseFadingOut means an animation is running toward transparent.
	PhaseFadingOut
	// PhaseNavigated means the fade completed and the stack mutation has
	// been issued; the screen stays transparent until it regains focus.
	PhaseNavigated
)

// Navigator is the imperative navigation-stack API the coordinator drives.
// *nav.Stack satisfies it.
type Navigator interface {
	Navigate(target string, params any) error
	Replace(target string, params any) error
	GoBack() error
	CanGoBack() bool
}

// FocusSource delivers focus-gained callbacks for a screen, typically a
// nav.Stack subscription.
type FocusSource interface {
	OnFocus(target string, fn func())
}

// Config carries the per-coordinator timing. Zero values fall back to the
// package defaults (300ms fade, ease-out cubic).
type Config struct {
	Duration time.Duration
	Easing   Easing
}

const defaultDuration = 300 * time.Millisecond

// Coordinator sequences the dissolve transition for one mounted screen
// instance: fade out, mutate the stack, pin transparent, and snap back to
// visible when the screen regains focus.
//
// Trigger methods block until the fade completes and the mutation has been
// issued, and return the mutation's error. Callers on a UI loop run them
// from a goroutine; the at-most-one-in-flight guard makes overlapping calls
// harmless.
type Coordinator struct {
	screen   string
	opacity  *Value
	phase    atomic.Int32
	nav      Navigator
	driver   Driver
	duration time.Duration
	easing   Easing
}

// NewCoordinator creates the coordinator for one screen instance. Opacity
// starts at 1 (fully visible), as on mount.
func NewCoordinator(screen string, nav Navigator, driver Driver, cfg Config) *Coordinator {
	duration := cfg.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	easing := cfg.Easing
	if easing == nil {
		easing = EaseOutCubic
	}
	return &Coordinator{
		screen:   screen,
		opacity:  NewValue(1),
		nav:      nav,
		driver:   driver,
		duration: duration,
		easing:   easing,
	}
}

// Screen returns the screen identifier this coordinator animates.
func (c *Coordinator) Screen() string {
	return c.screen
}

// Opacity returns the current animated opacity for the render layer.
func (c *Coordinator) Opacity() float64 {
	return c.opacity.Get()
}

// Phase returns the current transition phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// BindFocus subscribes the coordinator's focus reset to src, so the screen
// snaps back to fully visible whenever it becomes top of the stack again.
func (c *Coordinator) BindFocus(src FocusSource) *Coordinator {
	src.OnFocus(c.screen, c.FocusGained)
	return c
}

// GoTo fades out, then pushes target onto the stack, keeping this screen
// beneath it.
func (c *Coordinator) GoTo(target string, params any) error {
	return c.run(func() error { return c.nav.Navigate(target, params) })
}

// Replace fades out, then swaps this screen for target so it cannot be
// revisited with back-navigation. Used for one-shot screens such as a
// splash screen.
func (c *Coordinator) Replace(target string, params any) error {
	return c.run(func() error { return c.nav.Replace(target, params) })
}

// GoBack fades out, then pops this screen. When nothing is beneath it the
// call is a complete no-op: no animation, no mutation, nil error. The stack
// depth is checked before the fade starts so a transition that cannot occur
// is never animated.
func (c *Coordinator) GoBack() error {
	if !c.nav.CanGoBack() {
		return nil
	}
	return c.run(func() error { return c.nav.GoBack() })
}

func (c *Coordinator) run(mutate func() error) error {
	// At-most-one-in-flight: a second trigger while fading is ignored,
	// which is what prevents double navigation from rapid repeated taps.
	if !c.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseFadingOut)) {
		return nil
	}

	done := make(chan error, 1)
	c.driver.AnimateTo(c.opacity, 0, c.duration, c.easing, func() {
		err := mutate()
		if err != nil {
			// The stack refused the mutation, so this screen never lost
			// focus and no focus event will arrive to restore it. Snap
			// back to visible and surface the error to the trigger's
			// caller.
			c.opacity.Set(1)
			c.phase.Store(int32(PhaseIdle))
			done <- err
			return
		}
		// Pin to transparent rather than trusting the animated end value:
		// if this screen stays mounted beneath the new top it must not
		// flash visible before the destination is fully presented.
		c.opacity.Set(0)
		c.phase.Store(int32(PhaseNavigated))
		done <- nil
	})
	return <-done
}

// FocusGained resets the screen to fully visible. It runs every time the
// screen becomes top of the stack again, regardless of which phase it was
// left in. A focus event while this screen's own fade is in flight is
// ignored — mid-fade the screen still owns focus, so such an event can only
// be stale.
func (c *Coordinator) FocusGained() {
	if Phase(c.phase.Load()) == PhaseFadingOut {
		return
	}
	c.opacity.Set(1)
	c.phase.Store(int32(PhaseIdle))
}
