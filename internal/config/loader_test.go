package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 15*time.Minute {
		t.Errorf("tick interval = %v, want 15m", cfg.Scheduler.TickInterval)
	}
	if cfg.Scheduler.MaxTargetRetries != 8 {
		t.Errorf("max target retries = %d, want 8", cfg.Scheduler.MaxTargetRetries)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greenlight.yaml")
	yaml := `
server:
  port: "9090"
scheduler:
  tick_interval: 5m
  max_parallel: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 5*time.Minute {
		t.Errorf("tick interval = %v, want 5m", cfg.Scheduler.TickInterval)
	}
	if cfg.Scheduler.MaxParallel != 8 {
		t.Errorf("max parallel = %d, want 8", cfg.Scheduler.MaxParallel)
	}
	// Untouched values keep defaults.
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("pg max conns = %d, want default 15", cfg.Postgres.MaxConns)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greenlight.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GREENLIGHT_PORT", "7070")
	t.Setenv("GREENLIGHT_SCHED_MAX_PARALLEL", "2")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, want env override 7070", cfg.Server.Port)
	}
	if cfg.Scheduler.MaxParallel != 2 {
		t.Errorf("max parallel = %d, want env override 2", cfg.Scheduler.MaxParallel)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"empty dsn", func(c *Config) { c.Postgres.DSN = "" }},
		{"empty nats url", func(c *Config) { c.NATS.URL = "" }},
		{"zero max conns", func(c *Config) { c.Postgres.MaxConns = 0 }},
		{"sub-minute tick", func(c *Config) { c.Scheduler.TickInterval = time.Second }},
		{"zero parallel", func(c *Config) { c.Scheduler.MaxParallel = 0 }},
		{"zero target retries", func(c *Config) { c.Scheduler.MaxTargetRetries = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := validate(&cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
