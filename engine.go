package mindwise

import (
	"sync"
	"sync/atomic"

	internalaudit "github.com/kpaternoster/mindwiseapp-sub004/internal/audit"
	"github.com/kpaternoster/mindwiseapp-sub004/internal/provision"
	"github.com/kpaternoster/mindwiseapp-sub004/keyval"
)

// Engine is the single authoritative holder of the authentication session.
// Exactly one Engine exists per process; all readers observe the same value
// after any mutation completes.
//
// Engine instances are configured through [Builder.Build] and then treated
// as immutable apart from the session state they guard.
type Engine struct {
	config Config
	store  *keyval.Store

	provision *provision.Dispatcher
	audit     *internalaudit.Dispatcher
	metrics   *Metrics

	// opMu serializes session mutations end to end, including their durable
	// writes. A mutation is a must-complete critical section: a second
	// SignIn cannot start while the first one's write is pending.
	opMu sync.Mutex

	stateMu sync.RWMutex
	token   string
	loading bool

	restored atomic.Bool
}

// Close drains the provisioning and audit dispatchers. It is idempotent and
// safe on a nil Engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.provision != nil {
		e.provision.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Session returns a point-in-time copy of the in-memory session.
func (e *Engine) Session() SessionSnapshot {
	if e == nil {
		return SessionSnapshot{}
	}
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return SessionSnapshot{
		Token:    e.token,
		SignedIn: e.token != "",
		Loading:  e.loading,
	}
}

// IsSignedIn reports whether an activated session exists in memory. It is
// strictly derived from token presence.
func (e *Engine) IsSignedIn() bool {
	return e.Session().SignedIn
}

// Loading reports whether the initial restore-from-storage phase is still
// pending. It is true from construction until [Engine.Restore] completes and
// false for the rest of the process lifetime.
func (e *Engine) Loading() bool {
	return e.Session().Loading
}

// Token returns the in-memory session token, or "" when signed out.
func (e *Engine) Token() string {
	return e.Session().Token
}

// AuditDropped reports how many audit events were discarded by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// ProvisionDropped reports how many provisioning jobs were discarded by a
// full queue.
func (e *Engine) ProvisionDropped() uint64 {
	if e == nil || e.provision == nil {
		return 0
	}
	return e.provision.Dropped()
}

// ProvisionFailed reports how many provisioning jobs ran but failed. The
// failures never surface anywhere else; this counter is the telemetry hook.
func (e *Engine) ProvisionFailed() uint64 {
	if e == nil || e.provision == nil {
		return 0
	}
	return e.provision.Failed()
}

// MetricsSnapshot returns a deep copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) setToken(token string) {
	e.stateMu.Lock()
	e.token = token
	e.stateMu.Unlock()
}
