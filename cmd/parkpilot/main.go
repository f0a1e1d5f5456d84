// parkpilot is a terminal client for the theme park server: it mirrors the
// park over a websocket, dispatches guests to rides and journals every batch.
//
// Usage:
//
//	parkpilot dash           - Interactive dashboard in this terminal
//	parkpilot run            - Headless pilot that dispatches on its own
//	parkpilot serve          - Serve the dashboard over SSH
//	parkpilot history        - Browse the dispatch journal
//	parkpilot config         - Print the effective configuration
//
// Global flags:
//
//	--config <path>      - Config file (default: search order, see 'config')
//	--url <ws://...>     - Park server URL
//	--db <path>          - Journal database path
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/parkpilot/internal/config"
	"github.com/vovakirdan/parkpilot/internal/pilot"
	"github.com/vovakirdan/parkpilot/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagURL      string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "parkpilot",
	Short: "parkpilot - Run a theme park from your terminal",
	Long: `parkpilot connects to a park server over a websocket, keeps a live
copy of zones and guests, and sends guests to rides by hand or with the
smart queue and auto-start strategies.

Available commands:
  dash     - Interactive dashboard
  run      - Headless pilot
  serve    - SSH server, one park session per connection
  history  - Dispatch journal
  config   - Effective configuration

Examples:
  parkpilot dash --url ws://localhost:8080
  parkpilot run --smart-queue
  parkpilot serve --ssh :2222
  parkpilot history --plain`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Park server websocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to journal database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the config file and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagURL != "" {
		cfg.Server.URL = flagURL
	}
	if flagDBPath != "" {
		cfg.Journal.Path = flagDBPath
		cfg.Journal.Enabled = true
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// mustLoadConfig loads the config or exits.
func mustLoadConfig() config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the process logger at the configured level.
func newLogger(w io.Writer, cfg config.Config, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// pilotConfig maps the file config onto session settings.
func pilotConfig(cfg config.Config) pilot.Config {
	return pilot.Config{
		URL:                cfg.Server.URL,
		ClientType:         cfg.Server.ClientType,
		ClientName:         cfg.Server.ClientName,
		HandshakeTimeout:   cfg.Server.HandshakeTimeout,
		RideTick:           cfg.Dispatch.RideTick,
		QueueTick:          cfg.Dispatch.SmartQueueInterval,
		SmartQueue:         cfg.Dispatch.SmartQueue,
		AutoStartThreshold: cfg.Dispatch.AutoStartThreshold,
		MaxNotices:         cfg.Notifications.Max,
	}
}

// openJournal opens the journal when enabled. A journal that cannot be
// opened is logged and skipped.
func openJournal(cfg config.Config, logger *log.Logger) *storage.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("could not open dispatch journal", "path", cfg.Journal.Path, "error", err)
		return nil
	}
	return store
}

// sessionOptions wires the logger and an optional journal into a session.
func sessionOptions(logger *log.Logger, store *storage.Store) []pilot.Option {
	opts := []pilot.Option{pilot.WithLogger(logger)}
	if store != nil {
		opts = append(opts, pilot.WithJournal(store))
	}
	return opts
}
