package ui

import (
	"strings"

	"github.com/five82/varal/internal/state"
)

// renderHeader renders the top bar: logo, connection badge, freshness and
// the endpoint being polled.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	conn := m.view.Connection(m.now)

	parts := []string{
		bg.Render("varal", styles.Logo),
		styles.StatusStyle(string(conn)).Render(connectionLabel(conn)),
	}

	if m.view.Loading {
		parts = append(parts, bg.Render("refreshing…", styles.InfoText))
	}

	age, ok := m.view.HeartbeatAge(m.now)
	parts = append(parts, bg.Render(formatAge(age, ok), styles.MutedText))
	if ok {
		parts = append(parts,
			bg.Render("updated", styles.FaintText)+bg.Space()+
				bg.Render(formatClock(m.view.LastReceived), styles.Text))
	}

	if conn == state.Offline && m.view.LastError != nil {
		limit := 60
		if m.width < 100 {
			limit = 30
		}
		parts = append(parts, bg.Render(truncate(m.view.LastError.Error(), limit), styles.DangerText))
	} else if m.apiURL != "" && m.width >= 100 {
		parts = append(parts, bg.Render(truncateMiddle(m.apiURL, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.screen {
	case ScreenLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"esc", "Dashboard"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"a", "Auto"},
			{"o", "Open"},
			{"c", "Close"},
			{"r", "Refresh"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderMain renders the header, command bar and the active screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch m.screen {
	case ScreenLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderDashboard())
	}
	return b.String()
}
