package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket.
type MetricID uint16

const (
	// MetricRestoreCompleted counts completed Restore calls, whether or not
	// a persisted token was found.
	MetricRestoreCompleted MetricID = iota
	// MetricRestoreSignedIn counts Restore calls that found a persisted token.
	MetricRestoreSignedIn
	// MetricSignInSuccess counts successful SignIn calls.
	MetricSignInSuccess
	// MetricSignInFailure counts SignIn calls rejected by validation or storage.
	MetricSignInFailure
	// MetricSignUpSuccess counts successful SignUp calls.
	MetricSignUpSuccess
	// MetricSignUpFailure counts SignUp calls rejected by validation or storage.
	MetricSignUpFailure
	// MetricActivationSuccess counts SignInAfterSignUp calls that activated a session.
	MetricActivationSuccess
	// MetricActivationEmpty counts SignInAfterSignUp calls with no stored token.
	MetricActivationEmpty
	// MetricSignOutSuccess counts successful SignOut calls, including no-op repeats.
	MetricSignOutSuccess
	// MetricSignOutFailure counts SignOut calls rejected by storage.
	MetricSignOutFailure
	// MetricProvisionDispatched counts identity-provisioning jobs accepted by the queue.
	MetricProvisionDispatched
	// MetricProvisionDropped counts identity-provisioning jobs rejected by a full queue.
	MetricProvisionDropped
	// MetricRemovalDispatched counts identity-removal jobs accepted by the queue.
	MetricRemovalDispatched
	// MetricSignInLatency is the latency histogram for SignIn.
	MetricSignInLatency

	// MetricIDCount is the number of defined metric identifiers.
	MetricIDCount
)

// Config controls which subsystems record anything.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

var bucketBounds = [...]time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	25 * time.Millisecond,
	100 * time.Millisecond,
	500 * time.Millisecond,
}

const bucketCount = len(bucketBounds) + 1

// Metrics holds atomic counters and optional latency histograms. All methods
// are safe for concurrent use and are no-ops when disabled.
type Metrics struct {
	enabled bool
	latency bool

	counters   [MetricIDCount]atomic.Uint64
	histograms [MetricIDCount][bucketCount]atomic.Uint64
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops and Snapshot returns empty maps.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id >= MetricIDCount {
		return
	}
	bucket := len(bucketBounds)
	for i, bound := range bucketBounds {
		if d <= bound {
			bucket = i
			break
		}
	}
	m.histograms[id][bucket].Add(1)
}

// LatencyEnabled reports whether histogram recording is active, so callers
// can skip taking timestamps on the hot path.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.latency
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].Load(); v > 0 {
			snap.Counters[id] = v
		}
	}
	if m.latency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			var buckets []uint64
			for b := 0; b < bucketCount; b++ {
				if v := m.histograms[id][b].Load(); v > 0 {
					if buckets == nil {
						buckets = make([]uint64, bucketCount)
					}
					buckets[b] = v
				}
			}
			if buckets != nil {
				snap.Histograms[id] = buckets
			}
		}
	}
	return snap
}
