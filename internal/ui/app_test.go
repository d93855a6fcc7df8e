package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/varal/internal/prefs"
	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

type fakeController struct {
	dispatched []varal.Command
	refreshes  int
	updates    chan struct{}
}

func (f *fakeController) Dispatch(cmd varal.Command) { f.dispatched = append(f.dispatched, cmd) }
func (f *fakeController) Refresh()                   { f.refreshes++ }
func (f *fakeController) Updates() <-chan struct{}   { return f.updates }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func onlineModel(t *testing.T, mode varal.Mode) (Model, *fakeController) {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	sess := state.NewSession(state.Options{})
	sec := float64(now.Unix())
	m := mode
	tok := sess.BeginPoll()
	sess.ApplyPoll(tok, &varal.Heartbeat{Mode: &m, ReceivedAt: &sec}, nil)

	store := &state.Store{}
	store.Update(sess.View(now))

	ctrl := &fakeController{updates: make(chan struct{}, 1)}
	model := New(Options{
		Controller: ctrl,
		Store:      store,
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	model.now = now
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), ctrl
}

func TestModel_QuickControlDispatches(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)

	m.Update(runeKey('o'))
	m.Update(runeKey('c'))
	if len(ctrl.dispatched) != 2 || ctrl.dispatched[0] != varal.CommandOpen || ctrl.dispatched[1] != varal.CommandClose {
		t.Fatalf("dispatched = %v, want [OPEN CLOSE]", ctrl.dispatched)
	}
}

func TestModel_CurrentModeControlDisabled(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)
	m.Update(runeKey('a'))
	if len(ctrl.dispatched) != 0 {
		t.Fatalf("dispatched = %v, want none for current mode", ctrl.dispatched)
	}
}

func TestModel_ControlsHiddenWhenStale(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)
	m.now = m.now.Add(2 * time.Minute)

	m.Update(runeKey('o'))
	if len(ctrl.dispatched) != 0 {
		t.Fatalf("dispatched = %v, want none while stale", ctrl.dispatched)
	}
	if out := m.View(); !strings.Contains(out, "Unavailable while the device is stale") {
		t.Fatalf("View() missing stale notice:\n%s", out)
	}
}

func TestModel_RefreshKey(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)
	m.Update(runeKey('r'))
	if ctrl.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", ctrl.refreshes)
	}
}

func TestModel_ThemeCycleSavesPrefs(t *testing.T) {
	m, _ := onlineModel(t, varal.ModeAuto)
	before := m.theme.Name

	updated, _ := m.Update(runeKey('T'))
	m = updated.(Model)
	if m.theme.Name == before {
		t.Fatalf("theme unchanged after T")
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Theme != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", p.Theme, m.theme.Name)
	}
}

func TestModel_ViewShowsHeartbeat(t *testing.T) {
	m, _ := onlineModel(t, varal.ModeForceOpen)
	out := m.View()
	for _, want := range []string{"varal", "ONLINE", "Forced open", "Quick controls"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestModel_EngineUpdateRefetchesView(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)
	ctrl.updates <- struct{}{}

	_, cmd := m.Update(engineUpdateMsg{})
	if cmd == nil {
		t.Fatalf("engineUpdateMsg returned nil command")
	}
}

func TestModel_LogsScreen(t *testing.T) {
	m, _ := onlineModel(t, varal.ModeAuto)
	path := filepath.Join(t.TempDir(), "varal.log")
	line := `{"level":"warn","ts":"2025-10-08T21:01:05Z","msg":"heartbeat poll failed","component":"engine","kind":"transport"}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m.logPath = path

	updated, cmd := m.Update(runeKey('l'))
	m = updated.(Model)
	if m.screen != ScreenLogs {
		t.Fatalf("screen = %v, want logs", m.screen)
	}
	if cmd == nil {
		t.Fatalf("entering logs returned nil command")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if out := m.View(); !strings.Contains(out, "heartbeat poll failed") {
		t.Fatalf("logs view missing entry:\n%s", out)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(Model).screen != ScreenDashboard {
		t.Fatalf("esc did not return to dashboard")
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m, ctrl := onlineModel(t, varal.ModeAuto)
	updated, _ := m.Update(runeKey('?'))
	m = updated.(Model)
	if !m.showHelp {
		t.Fatalf("help not shown")
	}
	if out := m.View(); !strings.Contains(out, "Keyboard Shortcuts") {
		t.Fatalf("help overlay missing title")
	}
	updated, _ = m.Update(runeKey('o'))
	if updated.(Model).showHelp || len(ctrl.dispatched) != 0 {
		t.Fatalf("key while help open should only close help")
	}
}
