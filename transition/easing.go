package transition

// Easing maps normalized elapsed time t in [0,1] to normalized progress.
type Easing func(t float64) float64

// EaseOutCubic decelerates toward the end of the animation. It is the
// curve used by every dissolve transition.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Linear is constant-rate progress, useful in tests.
func Linear(t float64) float64 {
	return t
}
