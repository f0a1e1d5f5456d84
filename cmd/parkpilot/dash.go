package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/parkpilot/internal/config"
	"github.com/vovakirdan/parkpilot/internal/pilot"
	"github.com/vovakirdan/parkpilot/internal/platform/tui"
)

var flagLogFile string

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive park dashboard",
	Long: `Connect to the park and show the live dashboard.

Controls:
  Up/Down     - Focus zone
  Left/Right  - Move guest cursor
  Space       - Select guest
  A           - Add selected guests to the ride
  S           - Start the focused ride
  M           - Toggle smart queue
  +/-         - Auto-start threshold
  1-3         - Park upgrades
  4-6         - Zone upgrades
  Tab         - Prestige screen
  R           - Restart (after game over)
  Q/Ctrl+C    - Quit

Logs are discarded while the dashboard owns the terminal; use --log-file
to keep them.

Examples:
  parkpilot dash
  parkpilot dash --url ws://park.example:8080
  parkpilot dash --log-file /tmp/parkpilot.log --log-level debug`,
	Run: runDash,
}

func init() {
	dashCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
}

func runDash(_ *cobra.Command, _ []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: dash needs a terminal; use 'parkpilot run' for headless mode")
		os.Exit(1)
	}

	cfg := mustLoadConfig()

	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		f, err := os.OpenFile(config.ExpandHome(flagLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, cfg, "parkpilot")

	store := openJournal(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	session := pilot.New(pilotConfig(cfg), sessionOptions(logger, store)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := session.Run(ctx); err != nil {
			logger.Error("park session ended", "error", err)
		}
	}()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	err := tui.RunDashboard(session, tui.DashboardOptions{
		NoticeTTL: cfg.Notifications.TTL,
		Width:     width,
		Height:    height,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
