package transition

import "time"

// Driver advances a [Value] toward a target over a fixed duration and
// invokes onComplete exactly once when the value has settled on the target.
// The animation is non-interactive: once started it cannot be canceled.
type Driver interface {
	AnimateTo(v *Value, target float64, duration time.Duration, easing Easing, onComplete func())
}

// TickerDriver is the real time-driven Driver. It steps the value on a
// fixed interval from a goroutine; the final step always lands exactly on
// the target before onComplete fires.
type TickerDriver struct {
	// Interval is the step period. Defaults to ~60 steps per second.
	Interval time.Duration
}

func (d TickerDriver) AnimateTo(v *Value, target float64, duration time.Duration, easing Easing, onComplete func()) {
	interval := d.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	if easing == nil {
		easing = EaseOutCubic
	}

	if duration <= 0 {
		v.Set(target)
		if onComplete != nil {
			onComplete()
		}
		return
	}

	start := v.Get()
	begin := time.Now()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for now := range ticker.C {
			t := float64(now.Sub(begin)) / float64(duration)
			if t >= 1 {
				break
			}
			v.Set(start + (target-start)*easing(t))
		}
		v.Set(target)
		if onComplete != nil {
			onComplete()
		}
	}()
}
