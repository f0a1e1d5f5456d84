package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/parkpilot/internal/park"
)

// Patience thresholds in seconds.
const (
	patienceLow      = 3
	patienceCritical = 1
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	frozenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	gameOverStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 4).
			Align(lipgloss.Center)
)

// newZoneTable creates the zone overview table.
func newZoneTable() table.Model {
	columns := []table.Column{
		{Title: "Zone", Width: 4},
		{Title: "Name", Width: 14},
		{Title: "Queue", Width: 7},
		{Title: "Ride", Width: 7},
		{Title: "Status", Width: 9},
		{Title: "Timer", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(5),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// zoneRows renders one table row per zone.
func zoneRows(v *park.View) []table.Row {
	rows := make([]table.Row, len(v.Zones))
	for i, z := range v.Zones {
		rows[i] = table.Row{
			z.ZoneID,
			z.ZoneName,
			fmt.Sprintf("%d/%d", z.QueueCount, z.QueueCapacity),
			fmt.Sprintf("%d/%d", z.RideCount, z.RideCapacity),
			zoneStatus(z),
			zoneTimer(z),
		}
	}
	return rows
}

func zoneStatus(z park.ZoneView) string {
	switch {
	case z.Locked:
		return "locked"
	case z.IsRunning:
		return "running"
	case z.FreeSlots() == 0:
		return "full"
	default:
		return "boarding"
	}
}

func zoneTimer(z park.ZoneView) string {
	if z.Remaining > 0 {
		return fmt.Sprintf("%ds", z.Remaining)
	}
	return "-"
}

// patience renders the seconds a guest will still wait.
func patience(seconds float64, frozen bool) string {
	text := fmt.Sprintf("%4.1fs", seconds)
	switch {
	case frozen:
		return frozenStyle.Render(text)
	case seconds <= patienceCritical:
		return criticalStyle.Render(text)
	case seconds <= patienceLow:
		return lowStyle.Render(text)
	default:
		return okStyle.Render(text)
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	if m.view.Scalars.GameOver {
		return m.renderGameOver()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.tab == tabPrestige {
		b.WriteString(m.renderPrestige())
	} else {
		b.WriteString(m.renderPark())
	}

	if notices := m.renderNotices(); notices != "" {
		b.WriteString("\n")
		b.WriteString(notices)
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m DashboardModel) renderHeader() string {
	sc := m.view.Scalars

	conn := okStyle.Render("connected")
	if !m.view.Connected || m.detached {
		conn = errorStyle.Render("disconnected")
	}

	tabs := []string{tabStyle.Render("Park"), tabStyle.Render("Prestige")}
	tabs[m.tab] = activeTabStyle.Render([]string{"Park", "Prestige"}[m.tab])

	line := fmt.Sprintf("%s  %s  balance %s  prestige %d (%d pts)",
		titleStyle.Render(m.opts.Title), conn, money(sc.Balance), sc.Prestige, sc.PrestigePoints)
	if sc.GuestTimersFrozen {
		line += "  " + frozenStyle.Render("timers frozen")
	}
	if mods := modifiers(sc); mods != "" {
		line += "\n" + dimStyle.Render(mods)
	}
	return line + "\n" + strings.Join(tabs, " ")
}

// modifiers summarises prestige bonuses and difficulty, empty when neutral.
func modifiers(sc park.Scalars) string {
	var parts []string
	b, d := sc.Bonuses, sc.Difficulty
	if b.MoneyMultiplier > 0 && b.MoneyMultiplier != 1 {
		parts = append(parts, fmt.Sprintf("money x%.1f", b.MoneyMultiplier))
	}
	if b.GuestPatienceBonus > 0 {
		parts = append(parts, fmt.Sprintf("patience +%.0fs", b.GuestPatienceBonus))
	}
	if b.UpgradeDiscount > 0 {
		parts = append(parts, fmt.Sprintf("upgrades -%.0f%%", b.UpgradeDiscount*100))
	}
	if d.FrustrationSpeedMultiplier > 1 {
		parts = append(parts, fmt.Sprintf("frustration x%.1f", d.FrustrationSpeedMultiplier))
	}
	if d.LeavingPenaltyMultiplier > 1 {
		parts = append(parts, fmt.Sprintf("penalty x%.1f", d.LeavingPenaltyMultiplier))
	}
	if d.UpgradeCostMultiplier > 1 {
		parts = append(parts, fmt.Sprintf("costs x%.1f", d.UpgradeCostMultiplier))
	}
	return strings.Join(parts, "  ")
}

func (m DashboardModel) renderPark() string {
	if len(m.view.Zones) == 0 {
		return dimStyle.Italic(true).Render("Waiting for park data...")
	}

	var b strings.Builder
	b.WriteString(boxStyle.Render(m.zones.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFocusedZone())
	b.WriteString("\n")
	b.WriteString(m.renderDispatch())
	b.WriteString("\n")
	b.WriteString(m.renderUpgrades())
	return b.String()
}

func (m DashboardModel) renderFocusedZone() string {
	z, ok := m.focused()
	if !ok {
		return dimStyle.Render("No zone selected")
	}
	frozen := m.view.Scalars.GuestTimersFrozen

	var b strings.Builder
	fmt.Fprintf(&b, "%s  ride %d/%d", titleStyle.Render(z.ZoneName), z.RideCount, z.RideCapacity)
	if z.RideTime > 0 {
		fmt.Fprintf(&b, "  %.0fs per ride", z.RideTime)
	}
	b.WriteString("\n")

	b.WriteString("Queue:\n")
	if len(z.Queue) == 0 {
		b.WriteString(dimStyle.Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, g := range z.Queue {
		cursor := "  "
		if i == m.guestCursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		if m.view.Selected(g.ID) {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %-10s %6s  %s\n", cursor, mark, g.ID, money(g.TicketPrice), patience(g.TimeToFrustration, frozen))
	}

	if len(z.Riders) > 0 {
		ids := make([]string, len(z.Riders))
		for i, g := range z.Riders {
			ids[i] = g.ID
		}
		fmt.Fprintf(&b, "Riding: %s\n", strings.Join(ids, ", "))
	}
	return b.String()
}

func (m DashboardModel) renderDispatch() string {
	sc := m.view.Scalars

	smart := "smart queue: " + onOff(m.view.SmartQueue)
	if !sc.Unlocked(park.FeatureSmartQueue) {
		smart = dimStyle.Render("smart queue: locked")
	}
	auto := fmt.Sprintf("auto start at %d riders", m.view.AutoStartThreshold)
	if !sc.Unlocked(park.FeatureAutoRide) {
		auto = dimStyle.Render("auto start: locked")
	}
	return smart + "  " + auto
}

func (m DashboardModel) renderUpgrades() string {
	sc := m.view.Scalars
	var b strings.Builder

	b.WriteString("Upgrades:\n")
	for i, u := range park.GlobalUpgrades {
		b.WriteString(upgradeLine(sc, fmt.Sprintf("%d", i+1), u))
	}
	if _, ok := m.focused(); ok {
		for i, u := range park.ZoneUpgrades {
			b.WriteString(upgradeLine(sc, fmt.Sprintf("%d", i+4), u))
		}
	}
	return b.String()
}

func upgradeLine(sc park.Scalars, k string, u park.Upgrade) string {
	line := fmt.Sprintf("  %s %-26s %s", k, u.Name, money(float64(sc.Cost(u.BaseCost))))
	if !sc.CanAfford(u) {
		line = dimStyle.Render(line)
	}
	return line + "\n"
}

func (m DashboardModel) renderPrestige() string {
	sc := m.view.Scalars
	var b strings.Builder

	fmt.Fprintf(&b, "Prestige level %d, %d points\n", sc.Prestige, sc.PrestigePoints)
	fmt.Fprintf(&b, "Requirement %s, balance %s\n", money(sc.PrestigeRequirement), money(sc.Balance))
	if sc.CanPrestige() {
		b.WriteString(okStyle.Render("Press P to prestige"))
	} else {
		b.WriteString(dimStyle.Render("Not ready to prestige"))
	}
	b.WriteString("\n\n")

	if len(sc.PrestigeUpgrades) == 0 {
		b.WriteString(dimStyle.Italic(true).Render("No prestige upgrades available."))
		return boxStyle.Render(b.String())
	}
	for i, u := range sc.PrestigeUpgrades {
		level := sc.CurrentUpgrades[u.ID]
		cursor := "  "
		if i == m.prestigeCursor {
			cursor = cursorStyle.Render("> ")
		}
		cost := fmt.Sprintf("%d pts", park.PrestigeCost(u, level))
		if u.MaxLevel > 0 && level >= u.MaxLevel {
			cost = "max"
		}
		line := fmt.Sprintf("%-20s %d/%d  %s", u.Name, level, u.MaxLevel, cost)
		if !sc.CanBuyPrestige(u) {
			line = dimStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
		if u.Description != "" {
			b.WriteString("    " + dimStyle.Render(u.Description) + "\n")
		}
	}
	return boxStyle.Render(b.String())
}

func (m DashboardModel) renderNotices() string {
	active := activeNotices(m.view.Notices, m.clock(), m.opts.NoticeTTL)
	lines := make([]string, len(active))
	for i, n := range active {
		if n.Kind == park.NoticeError {
			lines[i] = errorStyle.Render(n.Text)
		} else {
			lines[i] = infoStyle.Render(n.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderGameOver() string {
	sc := m.view.Scalars
	body := fmt.Sprintf("GAME OVER\n\nbalance %s  prestige %d\n\nr restart  q quit", money(sc.Balance), sc.Prestige)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, gameOverStyle.Render(body))
}
