// Package breakdown provides the per-service cost tab for a single month.
package breakdown

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/aws-costs-tui/internal/app"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/ui/components"
)

const (
	// summaryCardLines is the height of the bordered summary card including
	// its bottom margin.
	summaryCardLines = 6
	// tableHeaderLines is the header row plus its underline.
	tableHeaderLines = 2
	// docChromeLines is the vertical padding DocStyle adds around the content.
	docChromeLines = 2
)

// keyMap defines the key bindings specific to the breakdown tab.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// defaultKeyMap returns the default key bindings for the breakdown tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous service"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next service"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first service"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last service"),
		),
	}
}

// Model represents one month's breakdown tab. The selected row lives in the
// shared navigation state; the root model moves it.
type Model struct {
	state   *app.State
	period  app.TabID
	spinner components.LoadingSpinner
	bar     components.DistributionBar
	keys    keyMap
	width   int
	height  int
}

// New creates a breakdown tab for the current or previous month.
func New(state *app.State, period app.TabID) *Model {
	label := "Loading current month..."
	if period == app.TabPrevious {
		label = "Loading previous month..."
	}
	return &Model{
		state:   state,
		period:  period,
		spinner: components.NewSpinner(label),
		bar:     components.NewDistributionBar(10),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.SetWidth(m.barWidth())
}

// Rows returns the number of services and how many table rows fit.
func (m *Model) Rows() (total, visible int) {
	return m.summary().Len(), m.visibleRows()
}

func (m *Model) visibleRows() int {
	return max(m.height-docChromeLines-summaryCardLines-tableHeaderLines, 1)
}

// summary returns the month this tab shows, nil before the first refresh.
func (m *Model) summary() *models.PeriodSummary {
	snap := m.state.GetSnapshot()
	if snap == nil {
		return nil
	}
	if m.period == app.TabPrevious {
		return snap.Previous
	}
	return snap.Current
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Down, m.keys.Up}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Down, m.keys.Up},
		{m.keys.Top, m.keys.Bottom},
	}
}
