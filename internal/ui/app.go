package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/prefs"
	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

// Screen is the active top-level view.
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenLogs
)

// Controller is the engine surface the dashboard drives.
type Controller interface {
	Dispatch(cmd varal.Command)
	Refresh()
	Updates() <-chan struct{}
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	Store      *state.Store
	APIURL     string
	LogPath    string
	ThemeName  string
	PrefsPath  string
	Logger     *logger.Logger
	// Tick is the redraw cadence. Staleness is re-evaluated on every tick.
	Tick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctrl      Controller
	store     *state.Store
	apiURL    string
	logPath   string
	prefsPath string
	log       *logger.Logger
	tick      time.Duration

	theme  Theme
	keys   keyMap
	help   help.Model
	screen Screen
	width  int
	height int
	ready  bool

	view state.View
	now  time.Time

	logViewport viewport.Model
	logLines    []string
	logErr      error

	showHelp bool
}

// New creates the dashboard model.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	m := Model{
		ctrl:      opts.Controller,
		store:     opts.Store,
		apiURL:    opts.APIURL,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		log:       log.Named("ui"),
		tick:      tick,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		screen:    ScreenDashboard,
		now:       time.Now(),
	}
	if m.store != nil {
		m.view = m.store.View()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchViewCmd(m.store))
	}
	if m.ctrl != nil {
		cmds = append(cmds, waitForUpdateCmd(m.ctrl.Updates()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.store != nil {
			cmds = append(cmds, fetchViewCmd(m.store))
		}
		if m.screen == ScreenLogs {
			cmds = append(cmds, loadLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case viewMsg:
		m.view = state.View(msg)
		return m, nil

	case engineUpdateMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchViewCmd(m.store))
		}
		if m.ctrl != nil {
			cmds = append(cmds, waitForUpdateCmd(m.ctrl.Updates()))
		}
		return m, tea.Batch(cmds...)

	case logsMsg:
		m.applyLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
				m.log.Warnw("save prefs failed", "error", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.ctrl != nil {
			m.ctrl.Refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.screen = ScreenLogs
		return m, loadLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.Escape):
		m.screen = ScreenDashboard
		return m, nil
	}

	if m.screen == ScreenLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd varal.Command
	switch {
	case key.Matches(msg, m.keys.Auto):
		cmd = varal.CommandAuto
	case key.Matches(msg, m.keys.Open):
		cmd = varal.CommandOpen
	case key.Matches(msg, m.keys.Close):
		cmd = varal.CommandClose
	default:
		return m, nil
	}
	if m.ctrl == nil || !m.view.CommandEnabled(cmd, m.now) {
		return m, nil
	}
	m.ctrl.Dispatch(cmd)
	return m, nil
}

// Messages

type tickMsg time.Time

type viewMsg state.View

type engineUpdateMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchViewCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return viewMsg(store.View())
	}
}

func waitForUpdateCmd(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return engineUpdateMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or
// opts.Context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
