package transition

import "go.uber.org/atomic"

// Value is a single animated opacity in [0,1]. It is owned by exactly one
// Coordinator, read concurrently by the render layer, and never persisted.
type Value struct {
	f atomic.Float64
}

// NewValue creates a Value at the given opacity.
func NewValue(v float64) *Value {
	val := &Value{}
	val.f.Store(clamp01(v))
	return val
}

// Get returns the current opacity.
func (v *Value) Get() float64 {
	return v.f.Load()
}

// Set writes the opacity immediately, without animation. Hard resets (pin
// to transparent after a mutation, snap to visible on focus) use this.
func (v *Value) Set(x float64) {
	v.f.Store(clamp01(x))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
