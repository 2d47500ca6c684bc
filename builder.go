package mindwise

import (
	"context"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/kpaternoster/mindwiseapp-sub004/internal/audit"
	"github.com/kpaternoster/mindwiseapp-sub004/internal/provision"
	"github.com/kpaternoster/mindwiseapp-sub004/keyval"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; no I/O is performed against Redis or the provisioner.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	provisioner IdentityProvisioner
	auditSink   AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the durable key-value store.
// Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithProvisioner sets the notification-identity provisioner. Optional;
// defaults to [NoOpProvisioner].
func (b *Builder) WithProvisioner(p IdentityProvisioner) *Builder {
	b.provisioner = p
	return b
}

// WithAuditSink sets the destination for audit events. Optional; events are
// discarded when auditing is enabled without a sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram recording.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Engine. The returned
// Engine starts in the loading state; callers must invoke [Engine.Restore]
// once at process start.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, ErrRedisRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := keyval.NewStore(b.redis, cfg.Storage.RedisPrefix)

	engine := &Engine{
		config:  cfg,
		store:   store,
		loading: true,
	}

	record := func(ctx context.Context, token string) error {
		return store.Set(ctx, cfg.Provision.LastTokenKey, token)
	}
	engine.provision = provision.NewDispatcher(provision.Config{
		Enabled:    cfg.Provision.Enabled,
		BufferSize: cfg.Provision.BufferSize,
	}, b.provisioner, record)

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
