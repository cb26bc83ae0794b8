package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/aws-costs-tui/internal/services"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
)

// fakeTab reports a fixed number of rows and records what it receives.
type fakeTab struct {
	name    string
	rows    int
	visible int
	width   int
	height  int
	msgs    int
}

func (f *fakeTab) Init() tea.Cmd { return nil }

func (f *fakeTab) Update(tea.Msg) (Tab, tea.Cmd) {
	f.msgs++
	return f, nil
}

func (f *fakeTab) View() string { return "tab:" + f.name }

func (f *fakeTab) SetSize(width, height int) { f.width, f.height = width, height }

func (f *fakeTab) Rows() (int, int) { return f.rows, f.visible }

func (f *fakeTab) ShortHelp() []key.Binding { return nil }

func (f *fakeTab) FullHelp() [][]key.Binding { return nil }

func newTestModel(t *testing.T) (*Model, []*fakeTab) {
	t.Helper()
	model := NewModel(context.Background(), nil)
	tabs := []*fakeTab{
		{name: "current", rows: 10, visible: 4},
		{name: "previous", rows: 3, visible: 4},
		{name: "trend", rows: 8, visible: 8},
	}
	model.SetTabs([]Tab{tabs[0], tabs[1], tabs[2]})
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model, tabs
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel(context.Background(), nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.GetActiveTab() != TabCurrent {
		t.Error("Default tab should be Current Month")
	}
	if len(model.tabs) != TabCount {
		t.Errorf("Should have %d tab placeholders, got %d", TabCount, len(model.tabs))
	}
	if model.tabNames[TabTrend] != "6-Month Trend" {
		t.Errorf("trend tab name = %q", model.tabNames[TabTrend])
	}
}

func TestNewModel_WithManager(t *testing.T) {
	mgr := newTestManager(t, services.WithFetcher(stubFetcher{}))
	model := NewModel(context.Background(), mgr)

	profile, region := model.state.GetSource()
	if profile != "default" || region != "us-east-1" {
		t.Errorf("source = %q, %q", profile, region)
	}
	if model.services != mgr {
		t.Error("model should keep the manager")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(context.Background(), nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_InitStartsRefresh(t *testing.T) {
	mgr := newTestManager(t, services.WithFetcher(stubFetcher{}))
	model := NewModel(context.Background(), mgr)
	model.Init()

	if !model.state.IsLoading() {
		t.Error("Init should start a refresh")
	}
	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != LoadingNotificationID {
		t.Errorf("expected loading notification, got %+v", notifs)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model, tabs := newTestModel(t)

	if model.width != 100 || model.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", model.width, model.height)
	}
	if !model.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tabs[0].width != 100 || tabs[0].height != 35 {
		t.Errorf("tab size = %dx%d, want 100x35", tabs[0].width, tabs[0].height)
	}
}

func TestModel_TabKeys(t *testing.T) {
	model, _ := newTestModel(t)

	tests := []struct {
		key  tea.KeyMsg
		want TabID
	}{
		{keyRunes("3"), TabTrend},
		{keyRunes("1"), TabCurrent},
		{tea.KeyMsg{Type: tea.KeyTab}, TabPrevious},
		{keyRunes("l"), TabTrend},
		{tea.KeyMsg{Type: tea.KeyRight}, TabCurrent},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabTrend},
		{keyRunes("h"), TabPrevious},
		{tea.KeyMsg{Type: tea.KeyLeft}, TabCurrent},
		{keyRunes("2"), TabPrevious},
	}

	for _, tt := range tests {
		model.Update(tt.key)
		if got := model.GetActiveTab(); got != tt.want {
			t.Fatalf("after %q active tab = %v, want %v", tt.key.String(), got, tt.want)
		}
	}
}

func TestModel_RowKeys(t *testing.T) {
	model, _ := newTestModel(t)

	for range 5 {
		model.Update(keyRunes("j"))
	}
	nav := model.state.GetNavigation()
	if nav.SelectedRow != 5 || nav.ScrollOffset != 2 {
		t.Errorf("after 5 x j: %+v, want row 5 offset 2", nav)
	}

	model.Update(keyRunes("k"))
	if got := model.state.GetNavigation().SelectedRow; got != 4 {
		t.Errorf("after k row = %d, want 4", got)
	}

	model.Update(keyRunes("G"))
	if got := model.state.GetNavigation(); got.SelectedRow != 9 || got.ScrollOffset != 6 {
		t.Errorf("after G: %+v", got)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyHome})
	if got := model.state.GetNavigation(); got.SelectedRow != 0 || got.ScrollOffset != 0 {
		t.Errorf("after home: %+v", got)
	}

	model.Update(keyRunes("G"))
	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := model.state.GetNavigation(); got.SelectedRow != 0 || got.ActiveTab != TabPrevious {
		t.Errorf("tab switch should reset the row: %+v", got)
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		model, _ := newTestModel(t)
		cmd := model.handleKeyMsg(k)
		if cmd == nil {
			t.Fatalf("%q should quit", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q did not return QuitMsg", k.String())
		}
	}
}

func TestModel_Help(t *testing.T) {
	model, _ := newTestModel(t)

	model.Update(keyRunes("?"))
	if !model.showHelp {
		t.Error("showHelp should be true")
	}
	if !strings.Contains(model.View(), "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	// Esc closes help instead of quitting
	if cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("Esc with help open should not quit")
	}
	if model.showHelp {
		t.Error("showHelp should be false after Esc")
	}

	model.handleKeyMsg(keyRunes("?"))
	if !model.showHelp {
		t.Error("? should toggle help on")
	}
	model.handleKeyMsg(keyRunes("?"))
	if model.showHelp {
		t.Error("? should toggle help off")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(context.Background(), nil)

	if !strings.Contains(model.View(), "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.View()
	for _, want := range []string{"Current Month", "Previous Month", "6-Month Trend", "Nothing to show"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewActiveTab(t *testing.T) {
	model, _ := newTestModel(t)
	model.Update(keyRunes("3"))
	if !strings.Contains(model.View(), "tab:trend") {
		t.Error("View should render the trend tab")
	}
}

func TestModel_Notifications(t *testing.T) {
	model, _ := newTestModel(t)

	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})

	if n := len(model.state.GetNotifications()); n != 1 {
		t.Errorf("Expected 1 notification, got %d", n)
	}
	if !strings.Contains(model.View(), "Test Note") {
		t.Error("View should show notification")
	}

	model.Update(RemoveNotificationMsg{ID: "nonexistent"})
	model.Update(TickMsg{Time: time.Now()})
	if n := len(model.state.GetNotifications()); n != 1 {
		t.Errorf("unexpired notification cleared on tick, %d left", n)
	}
}

func TestModel_SnapshotLoaded(t *testing.T) {
	model, tabs := newTestModel(t)
	tabs[0].rows = 3

	model.state.StartLoading()
	model.state.SetLoadingNotification("Fetching costs...")
	model.state.SetNavigation(Navigation{SelectedRow: 9, ScrollOffset: 6})

	snap := testSnapshot(3)
	snap.Warnings = []string{"previous month: boom"}
	_, cmd := model.Update(SnapshotLoadedMsg{Snapshot: snap})
	if cmd == nil {
		t.Fatal("expected notification commands")
	}

	if model.state.GetSnapshot() != snap {
		t.Error("snapshot not stored")
	}
	if model.state.IsLoading() {
		t.Error("loading should be cleared")
	}
	for _, n := range model.state.GetNotifications() {
		if n.ID == LoadingNotificationID {
			t.Error("loading notification should be removed")
		}
	}
	if nav := model.state.GetNavigation(); nav.SelectedRow != 2 || nav.ScrollOffset != 0 {
		t.Errorf("navigation not clamped to new rows: %+v", nav)
	}
}

func TestModel_StatusBarShowsLastUpdate(t *testing.T) {
	model, _ := newTestModel(t)
	if strings.Contains(model.renderStatusBar(), "updated") {
		t.Error("status bar should not show an update time before the first refresh")
	}

	model.Update(SnapshotLoadedMsg{Snapshot: testSnapshot(1)})
	if bar := model.renderStatusBar(); !strings.Contains(bar, "updated now") {
		t.Errorf("status bar = %q, want relative update time", bar)
	}
}

func TestModel_SnapshotError(t *testing.T) {
	model, _ := newTestModel(t)
	model.state.StartLoading()

	wantErr := errors.New("fetch current month: boom")
	model.Update(SnapshotLoadedMsg{Err: wantErr})

	if !errors.Is(model.state.GetError(), wantErr) {
		t.Errorf("state error = %v", model.state.GetError())
	}
	if model.state.IsLoading() {
		t.Error("loading should be cleared")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	mgr := newTestManager(t, services.WithFetcher(stubFetcher{}))
	model := NewModel(context.Background(), mgr)

	cmd := model.handleKeyMsg(keyRunes("r"))
	if cmd == nil {
		t.Fatal("r should start a refresh")
	}
	if !model.state.IsLoading() {
		t.Error("state should be loading")
	}

	again := model.handleKeyMsg(keyRunes("r"))
	msg := again()
	if add, ok := msg.(AddNotificationMsg); !ok || add.Type != NotificationInfo {
		t.Errorf("second refresh should notify, got %T", msg)
	}

	loaded, ok := cmd().(SnapshotLoadedMsg)
	if !ok {
		t.Fatal("refresh command should return SnapshotLoadedMsg")
	}
	model.Update(loaded)
	if model.state.GetSnapshot() == nil {
		t.Error("snapshot should be stored after refresh")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model, _ := newTestModel(t)
	model.state.StartLoading()
	model.state.SetLoadingNotification("Fetching costs...")

	model.handleServiceEvent(services.FetchProgressEvent{Step: 2, Total: 8, Label: "February 2026"})
	if p := model.state.GetProgress(); p.Step != 2 || p.Total != 8 {
		t.Errorf("progress = %+v", p)
	}
	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || !strings.Contains(notifs[0].Message, "February 2026 (2/8)") {
		t.Errorf("loading toast not updated: %+v", notifs)
	}

	cmd := model.handleServiceEvent(services.CredentialsChangedEvent{Path: "/tmp/credentials"})
	add, ok := cmd().(AddNotificationMsg)
	if !ok || add.Type != NotificationWarning || !strings.Contains(add.Message, "restart") {
		t.Errorf("unexpected credentials notification: %+v", add)
	}

	denied := &costexplorer.APIError{Kind: costexplorer.ErrPermissionDenied, StatusCode: 403}
	cmd = model.handleServiceEvent(services.ErrorEvent{Service: "cost explorer", Error: denied})
	add, ok = cmd().(AddNotificationMsg)
	if !ok || add.Type != NotificationError {
		t.Fatalf("unexpected error notification: %+v", add)
	}
	if hint := costexplorer.Hint(denied); !strings.Contains(add.Message, hint) {
		t.Errorf("error toast %q should contain hint %q", add.Message, hint)
	}
}

func TestModel_Tick(t *testing.T) {
	model := NewModel(context.Background(), nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(context.Background(), nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestModel_ForwardsToActiveTab(t *testing.T) {
	model, tabs := newTestModel(t)
	before := tabs[0].msgs
	model.Update(TickMsg{})
	if tabs[0].msgs != before+1 {
		t.Error("active tab should receive messages")
	}
	if tabs[1].msgs != 0 {
		t.Error("inactive tab should not receive messages")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		id   TabID
		want string
	}{
		{TabCurrent, "Current Month"},
		{TabPrevious, "Previous Month"},
		{TabTrend, "Trend"},
		{TabID(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
