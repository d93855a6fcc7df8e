package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

const labelWidth = 14

// renderDashboard renders the metrics card, quick controls, feedback banner
// and footer help.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()

	cardWidth := m.width - 2
	if cardWidth > 60 {
		cardWidth = 60
	}
	if cardWidth < 20 {
		cardWidth = 20
	}

	sections := []string{
		styles.Card.Width(cardWidth).Render(m.renderMetrics(styles)),
		styles.Card.Width(cardWidth).Render(m.renderControls(styles)),
	}
	if banner := m.renderFeedback(styles); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMetrics(styles Styles) string {
	hb := m.view.Heartbeat
	var rows []string
	row := func(label, value string) {
		rows = append(rows, styles.MutedText.Render(padRight(label, labelWidth))+value)
	}

	if hb == nil {
		row("Status", styles.FaintText.Render("waiting for first heartbeat"))
	}

	var temp, humidity *float64
	var rain *bool
	if hb != nil {
		temp, humidity, rain = hb.TempC, hb.Humidity, hb.Rain
	}
	row("Temperature", styles.Text.Render(formatTemperature(temp)))
	row("Humidity", styles.Text.Render(formatHumidity(humidity)))

	rainText, rainKey := rainLabel(rain)
	row("Weather", styles.StatusStyle(rainKey).Render(rainText))

	row("Mode", m.renderMode(styles))

	uptime, ok := hb.Uptime()
	row("Uptime", styles.Text.Render(formatUptime(uptime, ok)))

	return strings.Join(rows, "\n")
}

func (m Model) renderMode(styles Styles) string {
	if !m.view.HasMode {
		return styles.FaintText.Render(missing)
	}
	badge := styles.StatusStyle(string(m.view.Mode)).Render(modeLabel(m.view.Mode))
	if !m.view.Optimistic() {
		return badge
	}
	return badge + " " + styles.WarningText.Render("awaiting confirmation")
}

func (m Model) renderControls(styles Styles) string {
	title := styles.AccentText.Bold(true).Render("Quick controls")
	if !m.view.ControlsVisible(m.now) {
		conn := m.view.Connection(m.now)
		return title + "\n" + styles.FaintText.Render(
			"Unavailable while the device is "+strings.ToLower(connectionLabel(conn)))
	}

	buttons := make([]string, 0, len(varal.Commands))
	for _, cmd := range varal.Commands {
		buttons = append(buttons, m.renderButton(styles, cmd))
	}
	line := strings.Join(buttons, "  ")

	var status string
	switch {
	case m.view.InFlight != "":
		status = styles.InfoText.Render("Sending " + commandLabel(m.view.InFlight) + "…")
	case m.view.AwaitingAck:
		status = styles.WarningText.Render("Waiting for the device to confirm")
	}
	if status == "" {
		return title + "\n" + line
	}
	return title + "\n" + line + "\n" + status
}

func (m Model) renderButton(styles Styles, cmd varal.Command) string {
	keyHint := map[varal.Command]string{
		varal.CommandAuto:  "a",
		varal.CommandOpen:  "o",
		varal.CommandClose: "c",
	}[cmd]
	label := "[" + keyHint + "] " + commandLabel(cmd)

	if m.view.CommandEnabled(cmd, m.now) {
		return styles.Text.Bold(true).Render(label)
	}
	target, _ := cmd.TargetMode()
	if m.view.HasMode && m.view.Mode == target {
		return styles.StatusStyle(string(target)).Render(label)
	}
	return styles.FaintText.Render(label)
}

func (m Model) renderFeedback(styles Styles) string {
	fb := m.view.Feedback
	if fb == nil {
		return ""
	}
	switch fb.Kind {
	case state.FeedbackError:
		return styles.DangerText.Render("✗ " + fb.Message)
	default:
		return styles.SuccessText.Render("✓ " + fb.Message)
	}
}
