package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/parkpilot/internal/dispatch"
	"github.com/vovakirdan/parkpilot/internal/park"
)

// Dashboard defaults.
const (
	DefaultNoticeTTL = 3 * time.Second
	DefaultRefresh   = 250 * time.Millisecond

	defaultWidth  = 80
	defaultHeight = 24
)

// Controller is the part of a pilot session the dashboard drives. Reads go
// through View; every command is fire-and-forget.
type Controller interface {
	View() *park.View
	Updates() <-chan struct{}
	SelectZone(zoneID string)
	ToggleGuest(guestID string)
	AddToRide()
	StartRide(zoneID string)
	SetSmartQueue(on bool)
	SetAutoStartThreshold(n int)
	ApplyGlobalUpgrade(upgradeType string)
	ApplyZoneUpgrade(zoneID, upgradeType string)
	PurchasePrestigeUpgrade(upgradeID string)
	PrestigeReset()
	Restart()
}

// DashboardOptions tunes the dashboard.
type DashboardOptions struct {
	Title     string
	NoticeTTL time.Duration
	Refresh   time.Duration
	Width     int
	Height    int
}

type tab int

const (
	tabPark tab = iota
	tabPrestige
)

// DashboardModel is the Bubble Tea model for a live park session.
type DashboardModel struct {
	ctrl  Controller
	view  *park.View
	opts  DashboardOptions
	keys  DashboardKeyMap
	help  help.Model
	zones table.Model
	clock func() time.Time

	tab            tab
	zoneCursor     int
	guestCursor    int
	prestigeCursor int
	status         string
	width          int
	height         int
	quitting       bool
	detached       bool // update channel closed
}

// NewDashboardModel creates a dashboard bound to ctrl.
func NewDashboardModel(ctrl Controller, opts DashboardOptions) DashboardModel {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Title == "" {
		opts.Title = "PARKPILOT"
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	h := help.New()
	h.ShowAll = false

	m := DashboardModel{
		ctrl:   ctrl,
		opts:   opts,
		keys:   DefaultDashboardKeyMap(),
		help:   h,
		clock:  time.Now,
		width:  opts.Width,
		height: opts.Height,
	}
	m.zones = newZoneTable()
	m.sync()
	return m
}

// Init starts listening for session updates and the refresh tick.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.ctrl.Updates()), tickCmd(m.opts.Refresh))
}

// Update handles messages for the dashboard.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.sync()
		return m, waitForUpdate(m.ctrl.Updates())

	case disconnectedMsg:
		m.detached = true
		m.sync()
		return m, nil

	case TickMsg:
		return m, tickCmd(m.opts.Refresh)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.view.Scalars.GameOver {
		if key.Matches(msg, m.keys.Restart) {
			m.ctrl.Restart()
			m.reset()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Tab) {
		if m.tab == tabPark {
			m.tab = tabPrestige
		} else {
			m.tab = tabPark
		}
		m.status = ""
		return m, nil
	}

	if m.tab == tabPrestige {
		m.handlePrestigeKey(msg)
		return m, nil
	}
	m.handleParkKey(msg)
	return m, nil
}

func (m *DashboardModel) handleParkKey(msg tea.KeyMsg) {
	sc := m.view.Scalars
	switch {
	case key.Matches(msg, m.keys.ZoneUp):
		m.moveZone(-1)
	case key.Matches(msg, m.keys.ZoneDown):
		m.moveZone(1)
	case key.Matches(msg, m.keys.GuestUp):
		if m.guestCursor > 0 {
			m.guestCursor--
		}
	case key.Matches(msg, m.keys.GuestDown):
		if z, ok := m.focused(); ok && m.guestCursor < len(z.Queue)-1 {
			m.guestCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if z, ok := m.focused(); ok && m.guestCursor < len(z.Queue) {
			m.ctrl.ToggleGuest(z.Queue[m.guestCursor].ID)
		}
	case key.Matches(msg, m.keys.AddToRide):
		if m.view.SmartQueue {
			m.status = "Smart queue is dispatching"
			return
		}
		m.ctrl.AddToRide()
	case key.Matches(msg, m.keys.StartRide):
		if z, ok := m.focused(); ok {
			m.ctrl.StartRide(z.ZoneID)
		}
	case key.Matches(msg, m.keys.SmartQueue):
		if !sc.Unlocked(park.FeatureSmartQueue) {
			m.status = "Smart queue is locked"
			return
		}
		m.ctrl.SetSmartQueue(!m.view.SmartQueue)
	case key.Matches(msg, m.keys.ThresholdUp), key.Matches(msg, m.keys.ThresholdDown):
		if !sc.Unlocked(park.FeatureAutoRide) {
			m.status = "Auto start is locked"
			return
		}
		n := m.view.AutoStartThreshold + 1
		if key.Matches(msg, m.keys.ThresholdDown) {
			n = m.view.AutoStartThreshold - 1
		}
		if n >= dispatch.MinAutoStartThreshold && n <= dispatch.MaxAutoStartThreshold {
			m.ctrl.SetAutoStartThreshold(n)
		}
	case key.Matches(msg, m.keys.GlobalUpgrade):
		i := digitIndex(msg.String(), '1')
		if i < 0 || i >= len(park.GlobalUpgrades) {
			return
		}
		u := park.GlobalUpgrades[i]
		if !sc.CanAfford(u) {
			m.status = "Not enough money for " + u.Name
			return
		}
		m.ctrl.ApplyGlobalUpgrade(u.Type)
		m.status = ""
	case key.Matches(msg, m.keys.ZoneUpgrade):
		i := digitIndex(msg.String(), '4')
		z, ok := m.focused()
		if !ok || i < 0 || i >= len(park.ZoneUpgrades) {
			return
		}
		u := park.ZoneUpgrades[i]
		if !sc.CanAfford(u) {
			m.status = "Not enough money for " + u.Name
			return
		}
		m.ctrl.ApplyZoneUpgrade(z.ZoneID, u.Type)
		m.status = ""
	}
}

func (m *DashboardModel) handlePrestigeKey(msg tea.KeyMsg) {
	sc := m.view.Scalars
	switch {
	case key.Matches(msg, m.keys.ZoneUp):
		if m.prestigeCursor > 0 {
			m.prestigeCursor--
		}
	case key.Matches(msg, m.keys.ZoneDown):
		if m.prestigeCursor < len(sc.PrestigeUpgrades)-1 {
			m.prestigeCursor++
		}
	case key.Matches(msg, m.keys.Buy):
		if m.prestigeCursor >= len(sc.PrestigeUpgrades) {
			return
		}
		u := sc.PrestigeUpgrades[m.prestigeCursor]
		if !sc.CanBuyPrestige(u) {
			m.status = "Cannot buy " + u.Name
			return
		}
		m.ctrl.PurchasePrestigeUpgrade(u.ID)
		m.status = ""
	case key.Matches(msg, m.keys.Prestige):
		if !sc.CanPrestige() {
			m.status = "Balance is below the prestige requirement"
			return
		}
		m.ctrl.PrestigeReset()
		m.status = ""
	}
}

// moveZone focuses the next unlocked zone in direction dir.
func (m *DashboardModel) moveZone(dir int) {
	n := len(m.view.Zones)
	for i := m.zoneCursor + dir; i >= 0 && i < n; i += dir {
		if m.view.Zones[i].Locked {
			continue
		}
		m.zoneCursor = i
		m.guestCursor = 0
		m.zones.SetCursor(i)
		m.ctrl.SelectZone(m.view.Zones[i].ZoneID)
		return
	}
}

// focused returns the zone manual dispatch currently targets.
func (m DashboardModel) focused() (park.ZoneView, bool) {
	if m.view.FocusedZone == "" {
		return park.ZoneView{}, false
	}
	return m.view.Zone(m.view.FocusedZone)
}

// sync pulls the latest View and clamps cursors to it.
func (m *DashboardModel) sync() {
	m.view = m.ctrl.View()
	if m.view == nil {
		m.view = &park.View{}
	}

	if m.view.FocusedZone == "" {
		for i, z := range m.view.Zones {
			if !z.Locked {
				m.zoneCursor = i
				m.ctrl.SelectZone(z.ZoneID)
				break
			}
		}
	} else {
		for i, z := range m.view.Zones {
			if z.ZoneID == m.view.FocusedZone {
				m.zoneCursor = i
			}
		}
	}
	if m.zoneCursor >= len(m.view.Zones) {
		m.zoneCursor = 0
	}

	if z, ok := m.focused(); ok && m.guestCursor >= len(z.Queue) {
		m.guestCursor = max(len(z.Queue)-1, 0)
	}
	if n := len(m.view.Scalars.PrestigeUpgrades); m.prestigeCursor >= n {
		m.prestigeCursor = max(n-1, 0)
	}

	m.zones.SetRows(zoneRows(m.view))
	m.zones.SetCursor(m.zoneCursor)
}

func (m *DashboardModel) reset() {
	m.tab = tabPark
	m.zoneCursor = 0
	m.guestCursor = 0
	m.prestigeCursor = 0
	m.status = ""
}

// activeNotices returns the notices younger than ttl, oldest first.
func activeNotices(notices []park.Notice, now time.Time, ttl time.Duration) []park.Notice {
	var out []park.Notice
	for _, n := range notices {
		if now.Sub(n.At) < ttl {
			out = append(out, n)
		}
	}
	return out
}

// IsQuitting returns true if the user asked to leave.
func (m DashboardModel) IsQuitting() bool {
	return m.quitting
}

// RunDashboard runs the dashboard in the current terminal until the user quits.
func RunDashboard(ctrl Controller, opts DashboardOptions) error {
	p := tea.NewProgram(
		NewDashboardModel(ctrl, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
