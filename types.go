package mindwise

import (
	"io"

	internalaudit "github.com/kpaternoster/mindwiseapp-sub004/internal/audit"
	internalmetrics "github.com/kpaternoster/mindwiseapp-sub004/internal/metrics"
	"github.com/kpaternoster/mindwiseapp-sub004/internal/provision"
)

// SessionSnapshot is a point-in-time copy of the in-memory session returned
// by [Engine.Session]. SignedIn is strictly derived from token presence; the
// two can never diverge.
type SessionSnapshot struct {
	Token    string
	SignedIn bool
	Loading  bool
}

// IdentityProvisioner associates or disassociates the signed-in user with a
// push-notification delivery identity. Implementations must be safe to call
// when no session exists; errors are logged and counted by the engine's
// dispatcher, never propagated to session operations.
type IdentityProvisioner = provision.Provisioner

// NoOpProvisioner is an [IdentityProvisioner] that does nothing. It is the
// default when the Builder is given no provisioner.
type NoOpProvisioner = provision.NoOp

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricRestoreCompleted counts completed Restore calls.
	MetricRestoreCompleted = internalmetrics.MetricRestoreCompleted
	// MetricRestoreSignedIn counts Restore calls that found a persisted token.
	MetricRestoreSignedIn = internalmetrics.MetricRestoreSignedIn
	// MetricSignInSuccess counts successful SignIn calls.
	MetricSignInSuccess = internalmetrics.MetricSignInSuccess
	// MetricSignInFailure counts rejected SignIn calls.
	MetricSignInFailure = internalmetrics.MetricSignInFailure
	// MetricSignUpSuccess counts successful SignUp calls.
	MetricSignUpSuccess = internalmetrics.MetricSignUpSuccess
	// MetricSignUpFailure counts rejected SignUp calls.
	MetricSignUpFailure = internalmetrics.MetricSignUpFailure
	// MetricActivationSuccess counts SignInAfterSignUp calls that activated a session.
	MetricActivationSuccess = internalmetrics.MetricActivationSuccess
	// MetricActivationEmpty counts SignInAfterSignUp calls with nothing to activate.
	MetricActivationEmpty = internalmetrics.MetricActivationEmpty
	// MetricSignOutSuccess counts successful SignOut calls.
	MetricSignOutSuccess = internalmetrics.MetricSignOutSuccess
	// MetricSignOutFailure counts SignOut calls rejected by storage.
	MetricSignOutFailure = internalmetrics.MetricSignOutFailure
	// MetricProvisionDispatched counts accepted identity-provisioning jobs.
	MetricProvisionDispatched = internalmetrics.MetricProvisionDispatched
	// MetricProvisionDropped counts identity-provisioning jobs rejected by a full queue.
	MetricProvisionDropped = internalmetrics.MetricProvisionDropped
	// MetricRemovalDispatched counts accepted identity-removal jobs.
	MetricRemovalDispatched = internalmetrics.MetricRemovalDispatched
	// MetricSignInLatency is the latency histogram for SignIn.
	MetricSignInLatency = internalmetrics.MetricSignInLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
