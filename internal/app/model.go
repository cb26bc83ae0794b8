// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/services"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
	"github.com/j-veylop/aws-costs-tui/internal/ui/components"
	"github.com/j-veylop/aws-costs-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabCurrent shows the current month to date.
	TabCurrent TabID = iota
	// TabPrevious shows the last complete month.
	TabPrevious
	// TabTrend shows the trailing months.
	TabTrend
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabCurrent:
		return "Current Month"
	case TabPrevious:
		return "Previous Month"
	case TabTrend:
		return "Trend"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// Rows returns the number of selectable rows and how many fit on screen.
	Rows() (total, visible int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Up      key.Binding
	Down    key.Binding
	Home    key.Binding
	End     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	km = setListKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "current month"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "previous month"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "trend"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close help / quit"))
	return k
}

func setListKeys(k KeyMap) KeyMap {
	k.Home = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "go to bottom"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.Home, k.End},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content   lipgloss.Style
	Help      lipgloss.Style
	StatusBar lipgloss.Style
	Toast     lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#C25E00", Dark: "#FF9900"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.StatusBar = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	tabs     []Tab
	tabNames []string

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner components.LoadingSpinner
	help    help.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. Refreshes run under ctx, so
// cancelling it abandons an in-flight fetch.
func NewModel(ctx context.Context, mgr *services.Manager) *Model {
	if ctx == nil {
		ctx = context.Background()
	}

	state := NewState()
	trendMonths := 6
	if mgr != nil {
		state.SetSource(mgr.Credentials().Profile, mgr.Region())
		trendMonths = mgr.Config().TrendMonths
	}

	return &Model{
		tabNames: []string{
			TabCurrent.String(),
			TabPrevious.String(),
			fmt.Sprintf("%d-Month Trend", trendMonths),
		},
		tabs:     make([]Tab, TabCount), // Placeholder - tabs will be set externally
		state:    state,
		services: mgr,
		commands: NewCommands(ctx, mgr),
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		spinner:  components.NewSpinner("Loading..."),
		help:     help.New(),
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.state.GetNavigation().ActiveTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick(),
		defaultTickCmd(),
		m.commands.SubscribeToServices(),
		m.startRefresh(),
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case SnapshotLoadedMsg:
		cmds = append(cmds, m.handleSnapshotLoaded(msg)...)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

// startRefresh begins a refresh unless one is already running.
func (m *Model) startRefresh() tea.Cmd {
	if m.services == nil {
		return nil
	}
	if !m.state.StartLoading() {
		return notifyInfoCmd("Refresh already in progress")
	}
	m.state.SetLoadingNotification("Fetching costs...")
	return m.commands.Refresh()
}

func (m *Model) handleSnapshotLoaded(msg SnapshotLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd

	m.state.ClearLoadingNotification()

	// The toast for a failed fetch comes from the ErrorEvent; the tab shows
	// the error with its hint.
	if msg.Err != nil {
		m.state.SetError(msg.Err)
		if !errors.Is(msg.Err, context.Canceled) {
			logger.Error("refresh failed", "error", msg.Err)
		}
		return nil
	}

	m.state.SetSnapshot(msg.Snapshot)
	m.clampNavigation()

	for _, w := range msg.Snapshot.Warnings {
		cmds = append(cmds, notifyWarningCmd(w))
	}
	cmds = append(cmds, notifySuccessCmd("Costs updated"))
	return cmds
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.FetchProgressEvent:
		m.state.SetProgress(Progress{Step: e.Step, Total: e.Total, Label: e.Label})
		if m.state.IsLoading() {
			m.state.SetLoadingNotification(fmt.Sprintf("Fetching %s (%d/%d)...", e.Label, e.Step, e.Total))
		}

	case services.CredentialsChangedEvent:
		return notifyWarningCmd("Credentials file changed; restart to use the new credentials")

	case services.ErrorEvent:
		message := fmt.Sprintf("[%s] %v", e.Service, e.Error)
		if hint := costexplorer.Hint(e.Error); hint != "" {
			message += " (" + hint + ")"
		}
		return notifyErrorCmd(message)
	}

	return nil
}

// setNavigation stores nav, clamped to the rows of the tab it selects.
func (m *Model) setNavigation(nav Navigation) {
	if tab := m.tab(nav.ActiveTab); tab != nil {
		rows, visible := tab.Rows()
		nav = nav.Clamp(rows, visible)
	}
	m.state.SetNavigation(nav)
}

// clampNavigation re-fits the cursor after the data or the window changed.
func (m *Model) clampNavigation() {
	m.setNavigation(m.state.GetNavigation())
}

func (m *Model) tab(id TabID) Tab {
	if int(id) < 0 || int(id) >= len(m.tabs) {
		return nil
	}
	return m.tabs[id]
}

func (m *Model) activeRows() (int, int) {
	if tab := m.tab(m.GetActiveTab()); tab != nil {
		return tab.Rows()
	}
	return 0, 0
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	active := m.GetActiveTab()
	if tab := m.tab(active); tab != nil {
		var cmd tea.Cmd
		m.tabs[active], cmd = tab.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := m.height - 5
	contentHeight = max(0, contentHeight)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
	m.clampNavigation()
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	nav := m.state.GetNavigation()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Tab1):
		m.setNavigation(nav.SwitchTo(TabCurrent))

	case key.Matches(msg, m.keymap.Tab2):
		m.setNavigation(nav.SwitchTo(TabPrevious))

	case key.Matches(msg, m.keymap.Tab3):
		m.setNavigation(nav.SwitchTo(TabTrend))

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.setNavigation(nav.NextTab())
		}

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.setNavigation(nav.PrevTab())
		}

	case key.Matches(msg, m.keymap.Refresh):
		return m.startRefresh()

	case key.Matches(msg, m.keymap.Down):
		rows, visible := m.activeRows()
		m.state.SetNavigation(nav.MoveDown(rows, visible))

	case key.Matches(msg, m.keymap.Up):
		rows, visible := m.activeRows()
		m.state.SetNavigation(nav.MoveUp(rows, visible))

	case key.Matches(msg, m.keymap.Home):
		rows, visible := m.activeRows()
		m.state.SetNavigation(nav.GoTop(rows, visible))

	case key.Matches(msg, m.keymap.End):
		rows, visible := m.activeRows()
		m.state.SetNavigation(nav.GoBottom(rows, visible))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.ViewWithLabel()))
		return b.String()
	}

	if tab := m.tab(m.GetActiveTab()); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	notifications := m.renderNotifications()

	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	for len(mainLines) < m.height {
		mainLines = append(mainLines, "")
	}
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string
	active := m.GetActiveTab()

	for i, name := range m.tabNames {
		if TabID(i) == active {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

// renderStatusBar shows where the costs come from and when they were fetched.
func (m *Model) renderStatusBar() string {
	profile, region := m.state.GetSource()
	parts := []string{}
	if profile != "" {
		parts = append(parts, "profile "+profile)
	}
	if region != "" {
		parts = append(parts, region)
	}
	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		parts = append(parts, "updated "+humanize.Time(updated))
	}
	parts = append(parts, "? help")
	return m.styles.StatusBar.Render(strings.Join(parts, " • "))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")
	for len(mainLines) < m.height {
		mainLines = append(mainLines, "")
	}

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Tabs"))
	lines = append(lines, "  1-3              Switch tabs")
	lines = append(lines, "  Tab, →, l        Next tab")
	lines = append(lines, "  Shift+Tab, ←, h  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Rows"))
	lines = append(lines, "  j/k, ↑/↓         Move down/up")
	lines = append(lines, "  g/Home, G/End    Top / bottom")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r                Refresh costs")
	lines = append(lines, "  ?                Toggle help")
	lines = append(lines, "  q/Esc/Ctrl+C     Quit")

	active := m.GetActiveTab()
	if tab := m.tab(active); tab != nil {
		if tabHelp := tab.FullHelp(); len(tabHelp) > 0 {
			lines = append(lines, "")
			lines = append(lines, m.styles.Highlight.Render(m.tabNames[active]))
			lines = append(lines, "  "+strings.ReplaceAll(m.help.FullHelpView(tabHelp), "\n", "\n  "))
		}
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	active := m.GetActiveTab()
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		active+1,
		m.tabNames[active],
		m.styles.Subtle.Render("Nothing to show."),
	)
	return m.styles.Content.Render(content)
}
