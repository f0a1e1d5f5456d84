package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/parkpilot/internal/storage"
)

// maxDispatches is how many journal rows the history screen loads.
const maxDispatches = 100

// HistorySource reads the dispatch journal.
type HistorySource interface {
	AllZoneStats() ([]storage.ZoneStats, error)
	RecentDispatches(limit int) ([]storage.Dispatch, error)
}

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Tab  key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Tab, k.Quit}}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "zones/dispatches"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing the journal.
type HistoryModel struct {
	stats      []storage.ZoneStats
	dispatches []storage.Dispatch
	err        error
	showZones  bool
	table      table.Model
	help       help.Model
	keys       HistoryKeyMap
	width      int
	height     int
	quitting   bool
}

// NewHistoryModel loads the journal and builds the first table.
func NewHistoryModel(src HistorySource, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		showZones: true,
		help:      h,
		keys:      DefaultHistoryKeyMap(),
		width:     width,
		height:    height,
	}

	stats, err := src.AllZoneStats()
	if err == nil {
		m.stats = stats
		m.dispatches, err = src.RecentDispatches(maxDispatches)
	}
	m.err = err
	m.table = m.createTable()
	return m
}

// createTable builds the table for the active tab.
func (m *HistoryModel) createTable() table.Model {
	var columns []table.Column
	if m.showZones {
		columns = []table.Column{
			{Title: "Zone", Width: 6},
			{Title: "Batches", Width: 8},
			{Title: "Guests", Width: 7},
			{Title: "Value", Width: 9},
			{Title: "Rides", Width: 6},
			{Title: "Avg", Width: 6},
			{Title: "Last", Width: 12},
		}
	} else {
		columns = []table.Column{
			{Title: "When", Width: 12},
			{Title: "Zone", Width: 6},
			{Title: "Strategy", Width: 11},
			{Title: "Guests", Width: 7},
			{Title: "Value", Width: 9},
		}
	}

	height := m.height - 8
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
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
	t.SetRows(m.rows())
	return t
}

func (m HistoryModel) rows() []table.Row {
	if m.showZones {
		rows := make([]table.Row, len(m.stats))
		for i, st := range m.stats {
			rows[i] = table.Row{
				st.ZoneID,
				fmt.Sprintf("%d", st.Batches),
				fmt.Sprintf("%d", st.GuestsSent),
				money(st.TicketValue),
				fmt.Sprintf("%d", st.RidesStarted),
				fmt.Sprintf("%.1fs", st.AvgRideSeconds),
				st.LastActivity.Local().Format("Jan 02 15:04"),
			}
		}
		return rows
	}

	rows := make([]table.Row, len(m.dispatches))
	for i, d := range m.dispatches {
		rows[i] = table.Row{
			d.CreatedAt.Local().Format("Jan 02 15:04"),
			d.ZoneID,
			d.Strategy,
			fmt.Sprintf("%d", d.Guests),
			money(d.Value),
		}
	}
	return rows
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.showZones = !m.showZones
			m.table = m.createTable()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "DISPATCH JOURNAL - recent dispatches"
	if m.showZones {
		title = "DISPATCH JOURNAL - zones"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Cannot read journal: " + m.err.Error()))
	case len(m.stats) == 0:
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(empty.Render("No dispatches recorded yet.\nRun a session with the journal enabled."))
	default:
		b.WriteString(boxStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunHistory runs the journal browser.
func RunHistory(src HistorySource) error {
	p := tea.NewProgram(
		NewHistoryModel(src, defaultWidth, defaultHeight),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
