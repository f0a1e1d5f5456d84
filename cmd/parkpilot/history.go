package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/parkpilot/internal/platform/tui"
	"github.com/vovakirdan/parkpilot/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the dispatch journal",
	Long: `Display per-zone totals and the most recent dispatches from the journal.

In a terminal the journal opens as a browsable table; with --plain or when
output is piped it is printed as text.

Examples:
  parkpilot history
  parkpilot history --plain --limit 50
  parkpilot history --db ./journal.db`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print text instead of the interactive table")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of recent dispatches to print")
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	store, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := tui.RunHistory(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	stats, err := store.AllZoneStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Dispatch Journal")
	fmt.Println()

	if len(stats) == 0 {
		fmt.Println("No dispatches recorded yet.")
		return
	}

	fmt.Printf("  %-6s  %-7s  %-6s  %-9s  %-5s  %-5s  %s\n", "Zone", "Batches", "Guests", "Value", "Rides", "Avg", "Last")
	fmt.Printf("  %-6s  %-7s  %-6s  %-9s  %-5s  %-5s  %s\n", "----", "-------", "------", "-----", "-----", "---", "----")
	for _, st := range stats {
		fmt.Printf("  %-6s  %-7d  %-6d  %-9.0f  %-5d  %-5.1f  %s\n",
			st.ZoneID, st.Batches, st.GuestsSent, st.TicketValue, st.RidesStarted, st.AvgRideSeconds,
			st.LastActivity.Local().Format("2006-01-02 15:04"))
	}

	recent, err := store.RecentDispatches(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Recent dispatches")
	for _, d := range recent {
		fmt.Printf("  %s  zone %-4s  %-11s  %2d guests  $%.0f\n",
			d.CreatedAt.Local().Format("2006-01-02 15:04:05"), d.ZoneID, d.Strategy, d.Guests, d.Value)
	}
}
