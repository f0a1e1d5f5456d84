// Package tui provides the Bubble Tea dashboard for a parkpilot session and
// serves it over SSH via Wish.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to re-render time-dependent parts such as notices.
type TickMsg time.Time

// updateMsg reports that the session published a new View.
type updateMsg struct{}

// disconnectedMsg reports that the update channel is gone.
type disconnectedMsg struct{}

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForUpdate returns a command that blocks until the session signals.
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		if _, ok := <-updates; !ok {
			return disconnectedMsg{}
		}
		return updateMsg{}
	}
}
