// Package config provides YAML-based configuration for parkpilot: the park
// server, dispatch strategy, ride journal and SSH dashboard settings.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full parkpilot configuration.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Dispatch      DispatchConfig     `yaml:"dispatch"`
	Journal       JournalConfig      `yaml:"journal"`
	Notifications NotificationConfig `yaml:"notifications"`
	SSH           SSHConfig          `yaml:"ssh"`
	Log           LogConfig          `yaml:"log"`
}

// ServerConfig describes the park server connection.
type ServerConfig struct {
	URL              string        `yaml:"url"`
	ClientType       string        `yaml:"client_type"`
	ClientName       string        `yaml:"client_name"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// DispatchConfig tunes the timers and dispatch strategies.
type DispatchConfig struct {
	RideTick           time.Duration `yaml:"ride_tick"`
	SmartQueueInterval time.Duration `yaml:"smart_queue_interval"`
	SmartQueue         bool          `yaml:"smart_queue"` // enable as soon as the feature unlocks
	AutoStartThreshold int           `yaml:"auto_start_threshold"`
}

// JournalConfig controls the SQLite ride journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotificationConfig controls how long notices stay on the dashboard.
type NotificationConfig struct {
	TTL time.Duration `yaml:"ttl"`
	Max int           `yaml:"max"`
}

// SSHConfig configures `parkpilot serve`.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Server.URL == "":
		return fmt.Errorf("%w: server.url is empty", ErrInvalid)
	case c.Server.HandshakeTimeout < 0:
		return fmt.Errorf("%w: server.handshake_timeout must not be negative", ErrInvalid)
	case c.Dispatch.RideTick <= 0:
		return fmt.Errorf("%w: dispatch.ride_tick must be positive", ErrInvalid)
	case c.Dispatch.SmartQueueInterval <= 0:
		return fmt.Errorf("%w: dispatch.smart_queue_interval must be positive", ErrInvalid)
	case c.Dispatch.AutoStartThreshold < 1 || c.Dispatch.AutoStartThreshold > 8:
		return fmt.Errorf("%w: dispatch.auto_start_threshold must be within 1..8, got %d", ErrInvalid, c.Dispatch.AutoStartThreshold)
	case c.Journal.Enabled && c.Journal.Path == "":
		return fmt.Errorf("%w: journal.path is empty", ErrInvalid)
	case c.Notifications.TTL <= 0:
		return fmt.Errorf("%w: notifications.ttl must be positive", ErrInvalid)
	case c.Notifications.Max <= 0:
		return fmt.Errorf("%w: notifications.max must be positive", ErrInvalid)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
