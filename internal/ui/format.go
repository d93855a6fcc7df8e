package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

const missing = "—"

// formatTemperature renders °C with one decimal.
func formatTemperature(v *float64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.1f°C", *v)
}

// formatHumidity renders a whole percentage.
func formatHumidity(v *float64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.0f%%", *v)
}

// formatUptime renders device uptime. Zero counts as unknown.
func formatUptime(d time.Duration, ok bool) string {
	if !ok || d <= 0 {
		return missing
	}
	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	switch {
	case hours == 0 && minutes == 0:
		return "< 1 min"
	case hours == 0:
		return fmt.Sprintf("%d min", minutes)
	default:
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
}

// formatAge renders how long ago a heartbeat was received.
func formatAge(d time.Duration, ok bool) string {
	if !ok {
		return "no recent data"
	}
	totalSeconds := int64(math.Max(0, math.Floor(d.Seconds())))
	switch {
	case totalSeconds < 10:
		return "just now"
	case totalSeconds < 60:
		return fmt.Sprintf("%ds ago", totalSeconds)
	}
	minutes := totalSeconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

// formatClock renders a local HH:MM timestamp.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return missing
	}
	return t.Local().Format("15:04")
}

func rainLabel(rain *bool) (label, key string) {
	switch {
	case rain == nil:
		return missing, "pending"
	case *rain:
		return "Rain detected", "rain"
	default:
		return "Dry", "dry"
	}
}

func modeLabel(mode varal.Mode) string {
	switch mode {
	case varal.ModeAuto:
		return "Automatic"
	case varal.ModeForceOpen:
		return "Forced open"
	case varal.ModeForceClose:
		return "Forced closed"
	default:
		return missing
	}
}

func commandLabel(cmd varal.Command) string {
	switch cmd {
	case varal.CommandAuto:
		return "Auto"
	case varal.CommandOpen:
		return "Open"
	case varal.CommandClose:
		return "Close"
	default:
		return string(cmd)
	}
}

func connectionLabel(c state.ConnectionState) string {
	switch c {
	case state.Online:
		return "ONLINE"
	case state.Stale:
		return "STALE"
	case state.Offline:
		return "OFFLINE"
	default:
		return "CONNECTING"
	}
}
