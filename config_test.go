package mindwise

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty redis prefix", func(c *Config) { c.Storage.RedisPrefix = "" }},
		{"empty token key", func(c *Config) { c.Session.TokenKey = "" }},
		{"zero provision buffer", func(c *Config) { c.Provision.BufferSize = 0 }},
		{"empty bookkeeping key", func(c *Config) { c.Provision.LastTokenKey = "" }},
		{"bookkeeping key collides with token key", func(c *Config) {
			c.Provision.LastTokenKey = c.Session.TokenKey
		}},
		{"zero audit buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
		{"zero fade duration", func(c *Config) { c.Transition.FadeDuration = 0 }},
		{"zero tick interval", func(c *Config) { c.Transition.TickInterval = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindwise.toml")
	data := `
[storage]
redis_prefix = "therapyapp"

[session]
token_key = "session_token"

[provision]
on_restore = true

[audit]
enabled = true
buffer_size = 32
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Storage.RedisPrefix != "therapyapp" {
		t.Fatalf("expected overridden prefix, got %q", cfg.Storage.RedisPrefix)
	}
	if cfg.Session.TokenKey != "session_token" {
		t.Fatalf("expected overridden token key, got %q", cfg.Session.TokenKey)
	}
	if !cfg.Provision.OnRestore {
		t.Fatal("expected on_restore override")
	}
	if !cfg.Audit.Enabled || cfg.Audit.BufferSize != 32 {
		t.Fatalf("expected audit overrides, got %+v", cfg.Audit)
	}

	// Untouched fields keep their defaults.
	if cfg.Provision.LastTokenKey != "last_provisioned_push_token" {
		t.Fatalf("expected default bookkeeping key, got %q", cfg.Provision.LastTokenKey)
	}
	if cfg.Transition.FadeDuration != 300*time.Millisecond {
		t.Fatalf("expected default fade duration, got %v", cfg.Transition.FadeDuration)
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindwise.toml")
	data := `
[session]
token_key = ""
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for empty token key")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
