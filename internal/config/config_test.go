package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) error: %v", err)
	}
	if want := DefaultConfig(); !reflect.DeepEqual(cfg, want) {
		t.Errorf("embedded defaults drifted:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  url: ws://park:9000\ndispatch:\n  smart_queue: true\n  smart_queue_interval: 50ms\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Server.URL != "ws://park:9000" || !cfg.Dispatch.SmartQueue {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Dispatch.SmartQueueInterval != 50*time.Millisecond {
		t.Errorf("SmartQueueInterval = %v, want 50ms", cfg.Dispatch.SmartQueueInterval)
	}
	if cfg.Dispatch.RideTick != time.Second || cfg.Server.ClientName != "parkpilot" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty url", func(c *Config) { c.Server.URL = "" }, false},
		{"zero ride tick", func(c *Config) { c.Dispatch.RideTick = 0 }, false},
		{"negative queue interval", func(c *Config) { c.Dispatch.SmartQueueInterval = -time.Second }, false},
		{"threshold too low", func(c *Config) { c.Dispatch.AutoStartThreshold = 0 }, false},
		{"threshold too high", func(c *Config) { c.Dispatch.AutoStartThreshold = 9 }, false},
		{"threshold max", func(c *Config) { c.Dispatch.AutoStartThreshold = 8 }, true},
		{"journal without path", func(c *Config) { c.Journal.Path = "" }, false},
		{"journal disabled without path", func(c *Config) { c.Journal.Enabled = false; c.Journal.Path = "" }, true},
		{"zero ttl", func(c *Config) { c.Notifications.TTL = 0 }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("without files Load() should return defaults, got %+v", cfg)
	}

	userDir := filepath.Join(home, ".parkpilot")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil || cfg.Log.Level != "debug" {
		t.Errorf("user config not picked up: %+v, %v", cfg.Log, err)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("dispatch:\n  auto_start_threshold: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(custom)
	if err != nil || cfg.Dispatch.AutoStartThreshold != 3 || cfg.Log.Level != "info" {
		t.Errorf("custom path should win over user config: %+v, %v", cfg, err)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom config should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("dispatch:\n  auto_start_threshold: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(bad) = %v, want ErrInvalid", err)
	}
}

func TestMarshalIsLoadable(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("printed config does not load back:\n%s", data)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/pilot")
	if got := ExpandHome("~/.parkpilot/journal.db"); got != "/home/pilot/.parkpilot/journal.db" {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}
