package mindwise

import (
	"errors"
	"time"

	"github.com/BurntSushi/toml"
)

// Config defines the full engine configuration.
//
// Config instances are intended to be populated during initialization and
// then treated as immutable. Use [LoadConfig] to overlay a TOML file on top
// of the defaults, or start from the zero Builder which applies defaults
// itself.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Session    SessionConfig    `toml:"session"`
	Provision  ProvisionConfig  `toml:"provision"`
	Audit      AuditConfig      `toml:"audit"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Transition TransitionConfig `toml:"transition"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls the durable key-value store backing the session.
type StorageConfig struct {
	// RedisPrefix namespaces every key written by this process.
	RedisPrefix string `toml:"redis_prefix"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls durable session-token storage.
type SessionConfig struct {
	// TokenKey is the fixed key the opaque bearer token is stored under.
	// SignIn, SignUp, and SignOut are the only writers of this key.
	TokenKey string `toml:"token_key"`
}

/*
====================================
PROVISION CONFIG
====================================
*/

// ProvisionConfig controls the notification-identity provisioning hook.
// The hook is best-effort by contract: it never blocks or fails a session
// transition, and every toggle here only widens or narrows when it fires.
type ProvisionConfig struct {
	Enabled bool `toml:"enabled"`
	// OnSignIn schedules provisioning after a successful SignIn or
	// SignInAfterSignUp.
	OnSignIn bool `toml:"on_sign_in"`
	// OnRestore schedules provisioning after Restore finds a persisted
	// token. Disabled by default: restore runs before any interactive
	// consent surface is visible.
	OnRestore  bool `toml:"on_restore"`
	BufferSize int  `toml:"buffer_size"`
	// LastTokenKey is the bookkeeping key recording the most recently
	// provisioned token. Written best-effort by the dispatcher; no
	// atomicity with TokenKey is assumed.
	LastTokenKey string `toml:"last_token_key"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit event dispatcher.
type AuditConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
	DropIfFull bool `toml:"drop_if_full"`
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool `toml:"enabled"`
	EnableLatencyHistograms bool `toml:"enable_latency_histograms"`
}

/*
====================================
TRANSITION CONFIG
====================================
*/

// TransitionConfig carries the dissolve-transition timing shared by every
// screen. The transition package consumes these values; the Engine does not.
type TransitionConfig struct {
	FadeDuration time.Duration `toml:"fade_duration"`
	TickInterval time.Duration `toml:"tick_interval"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			RedisPrefix: "mw",
		},
		Session: SessionConfig{
			TokenKey: "auth_token",
		},
		Provision: ProvisionConfig{
			Enabled:      true,
			OnSignIn:     true,
			OnRestore:    false,
			BufferSize:   64,
			LastTokenKey: "last_provisioned_push_token",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Transition: TransitionConfig{
			FadeDuration: 300 * time.Millisecond,
			TickInterval: 16 * time.Millisecond,
		},
	}
}

// DefaultConfig returns the configuration a zero Builder starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// LoadConfig reads a TOML file and overlays it on the default configuration.
// Fields absent from the file keep their defaults. The result is validated
// before it is returned.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for values the engine cannot operate
// with. It is called by Builder.Build and LoadConfig.
func (c *Config) Validate() error {
	if c.Storage.RedisPrefix == "" {
		return errors.New("Storage.RedisPrefix must not be empty")
	}
	if c.Session.TokenKey == "" {
		return errors.New("Session.TokenKey must not be empty")
	}
	if c.Provision.Enabled {
		if c.Provision.BufferSize <= 0 {
			return errors.New("Provision.BufferSize must be > 0 when provisioning is enabled")
		}
		if c.Provision.LastTokenKey == "" {
			return errors.New("Provision.LastTokenKey must not be empty when provisioning is enabled")
		}
		if c.Provision.LastTokenKey == c.Session.TokenKey {
			return errors.New("Provision.LastTokenKey must differ from Session.TokenKey")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when auditing is enabled")
	}
	if c.Transition.FadeDuration <= 0 {
		return errors.New("Transition.FadeDuration must be > 0")
	}
	if c.Transition.TickInterval <= 0 {
		return errors.New("Transition.TickInterval must be > 0")
	}
	return nil
}
