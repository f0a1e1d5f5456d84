package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/parkpilot.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:              "ws://localhost:8080",
			ClientType:       "REACT_UI",
			ClientName:       "parkpilot",
			HandshakeTimeout: 10 * time.Second,
		},
		Dispatch: DispatchConfig{
			RideTick:           time.Second,
			SmartQueueInterval: 200 * time.Millisecond,
			AutoStartThreshold: 5,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "~/.parkpilot/journal.db",
		},
		Notifications: NotificationConfig{
			TTL: 3 * time.Second,
			Max: 5,
		},
		SSH: SSHConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
