package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/parkpilot/internal/pilot"
)

var (
	flagRunSmartQueue bool
	flagAutoStart     int
	flagStatusEvery   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pilot without a UI",
	Long: `Connect to the park and let the strategies play: the smart queue sends
the best paying guests to every zone with free seats as soon as the feature
unlocks, and auto-start launches rides once enough guests are aboard.

The command exits when the server closes the connection or on Ctrl+C.

Examples:
  parkpilot run
  parkpilot run --smart-queue --auto-start 3
  parkpilot run --status 10s --log-level debug`,
	Run: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagRunSmartQueue, "smart-queue", true, "Enable the smart queue once unlocked")
	runCmd.Flags().IntVar(&flagAutoStart, "auto-start", 0, "Auto-start threshold (1-8, 0 = from config)")
	runCmd.Flags().DurationVar(&flagStatusEvery, "status", 30*time.Second, "Log a park summary this often (0 = never)")
}

func runRun(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	cfg.Dispatch.SmartQueue = flagRunSmartQueue
	if flagAutoStart != 0 {
		cfg.Dispatch.AutoStartThreshold = flagAutoStart
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, cfg, "parkpilot")
	store := openJournal(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	session := pilot.New(pilotConfig(cfg), sessionOptions(logger, store)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagStatusEvery > 0 {
		go logStatus(ctx, logger, session, flagStatusEvery)
	}

	logger.Info("pilot starting", "url", cfg.Server.URL, "session", session.ID())
	if err := session.Run(ctx); err != nil {
		logger.Error("pilot stopped", "error", err)
		if store != nil {
			store.Close()
		}
		os.Exit(1)
	}
	logger.Info("pilot stopped")
}

// logStatus periodically logs a one-line summary of the park.
func logStatus(ctx context.Context, logger *log.Logger, session *pilot.Session, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v := session.View()
			guests, running := 0, 0
			for _, z := range v.Zones {
				guests += len(z.Queue) + len(z.Riders)
				if z.IsRunning {
					running++
				}
			}
			logger.Info("park status",
				"balance", v.Scalars.Balance,
				"prestige", v.Scalars.Prestige,
				"zones", len(v.Zones),
				"running", running,
				"guests", guests,
				"smartQueue", v.SmartQueue,
			)
		}
	}
}
