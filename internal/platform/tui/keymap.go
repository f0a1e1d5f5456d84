package tui

import "github.com/charmbracelet/bubbles/key"

// DashboardKeyMap defines the key bindings for the dashboard.
type DashboardKeyMap struct {
	ZoneUp        key.Binding
	ZoneDown      key.Binding
	GuestUp       key.Binding
	GuestDown     key.Binding
	Toggle        key.Binding
	AddToRide     key.Binding
	StartRide     key.Binding
	SmartQueue    key.Binding
	ThresholdUp   key.Binding
	ThresholdDown key.Binding
	GlobalUpgrade key.Binding
	ZoneUpgrade   key.Binding
	Tab           key.Binding
	Buy           key.Binding
	Prestige      key.Binding
	Restart       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k DashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoneUp, k.GuestDown, k.Toggle, k.AddToRide, k.StartRide, k.SmartQueue, k.Tab, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k DashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoneUp, k.ZoneDown, k.GuestUp, k.GuestDown},
		{k.Toggle, k.AddToRide, k.StartRide, k.SmartQueue},
		{k.ThresholdUp, k.ThresholdDown, k.GlobalUpgrade, k.ZoneUpgrade},
		{k.Tab, k.Buy, k.Prestige, k.Restart},
		{k.Help, k.Quit},
	}
}

// DefaultDashboardKeyMap returns default key bindings.
func DefaultDashboardKeyMap() DashboardKeyMap {
	return DashboardKeyMap{
		ZoneUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev zone"),
		),
		ZoneDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next zone"),
		),
		GuestUp: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev guest"),
		),
		GuestDown: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next guest"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "select guest"),
		),
		AddToRide: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to ride"),
		),
		StartRide: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start ride"),
		),
		SmartQueue: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "smart queue"),
		),
		ThresholdUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "auto-start +1"),
		),
		ThresholdDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "auto-start -1"),
		),
		GlobalUpgrade: key.NewBinding(
			key.WithKeys("1", "2", "3"),
			key.WithHelp("1-3", "park upgrade"),
		),
		ZoneUpgrade: key.NewBinding(
			key.WithKeys("4", "5", "6"),
			key.WithHelp("4-6", "zone upgrade"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "park/prestige"),
		),
		Buy: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "buy prestige upgrade"),
		),
		Prestige: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "prestige"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// digitIndex maps "1".."9" to 0..8 relative to base, -1 otherwise.
func digitIndex(k string, base rune) int {
	if len(k) != 1 {
		return -1
	}
	r := rune(k[0])
	if r < base || r > '9' {
		return -1
	}
	return int(r - base)
}
