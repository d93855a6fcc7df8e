package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/varal/internal/logtail"
)

const logTailLines = 500

type logsMsg struct {
	lines []string
	err   error
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logsMsg{lines: lines, err: err}
	}
}

func (m *Model) applyLogs(msg logsMsg) {
	follow := m.logViewport.AtBottom() || len(m.logLines) == 0
	m.logErr = msg.err
	if msg.err != nil {
		return
	}
	m.logLines = msg.lines
	m.logViewport.SetContent(m.renderLogContent())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) resizeLogViewport() {
	// header + command bar + box borders + title
	m.logViewport.Width = max(m.width-4, 10)
	m.logViewport.Height = max(m.height-5, 3)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	if len(m.logLines) > 0 {
		m.logViewport.SetContent(m.renderLogContent())
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		entry := logtail.Parse(line)
		text := logtail.Format(entry)
		switch entry.Level {
		case "ERROR", "DPANIC", "PANIC", "FATAL":
			text = styles.DangerText.Render(text)
		case "WARN":
			text = styles.WarningText.Render(text)
		case "DEBUG":
			text = styles.FaintText.Render(text)
		default:
			text = styles.Text.Render(text)
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n")
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfPageDown()
	}
	return m, nil
}

// renderLogs renders the diagnostics log box.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	title := "Diagnostics"
	if m.logPath != "" {
		title += "  " + truncateMiddle(m.logPath, max(m.width-20, 10))
	}

	var body string
	switch {
	case m.logPath == "":
		body = styles.FaintText.Render("File logging is disabled (set log_file in config.toml)")
	case m.logErr != nil:
		body = styles.DangerText.Render(m.logErr.Error())
	case len(m.logLines) == 0:
		body = styles.FaintText.Render("No log entries yet")
	default:
		body = m.logViewport.View()
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 10))

	return box.Render(styles.AccentText.Bold(true).Render(title) + "\n" + body)
}
