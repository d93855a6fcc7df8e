package varal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Mode is the clothesline controller's operating mode as reported by the device.
type Mode string

const (
	ModeAuto       Mode = "AUTO"
	ModeForceOpen  Mode = "FORCE_OPEN"
	ModeForceClose Mode = "FORCE_CLOSE"
)

// Valid reports whether m is one of the modes the firmware knows.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeForceOpen, ModeForceClose:
		return true
	}
	return false
}

// Command is an operator request to change the device mode.
type Command string

const (
	CommandAuto  Command = "AUTO"
	CommandOpen  Command = "OPEN"
	CommandClose Command = "CLOSE"
)

// Commands lists the accepted commands in display order.
var Commands = []Command{CommandAuto, CommandOpen, CommandClose}

// ParseCommand normalizes raw input into a Command.
func ParseCommand(raw string) (Command, error) {
	cmd := Command(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := cmd.TargetMode(); !ok {
		return "", fmt.Errorf("unknown command %q", raw)
	}
	return cmd, nil
}

// TargetMode maps a command to the mode the device enters once it applies it.
func (c Command) TargetMode() (Mode, bool) {
	switch c {
	case CommandAuto:
		return ModeAuto, true
	case CommandOpen:
		return ModeForceOpen, true
	case CommandClose:
		return ModeForceClose, true
	}
	return "", false
}

// Heartbeat mirrors the payload returned by /heartbeat/. Every field is
// optional on the wire.
type Heartbeat struct {
	TempC      *float64 `json:"temp_c,omitempty"`
	Humidity   *float64 `json:"humidity,omitempty"`
	Rain       *bool    `json:"rain,omitempty"`
	Mode       *Mode    `json:"mode,omitempty"`
	UptimeMs   *int64   `json:"uptime_ms,omitempty"`
	ReceivedAt *float64 `json:"received_at,omitempty"`
}

// maxReceivedAt is the largest epoch second a time.Time built from
// nanoseconds can represent (year 2262).
const maxReceivedAt = float64(math.MaxInt64 / 1e9)

// ReceivedTime returns received_at as a time. A missing, non-positive or
// out-of-range timestamp means the heartbeat carries no usable data.
func (h *Heartbeat) ReceivedTime() (time.Time, bool) {
	if h == nil || h.ReceivedAt == nil {
		return time.Time{}, false
	}
	ts := *h.ReceivedAt
	if math.IsNaN(ts) || ts <= 0 || ts > maxReceivedAt {
		return time.Time{}, false
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))), true
}

// ReportedMode returns the device mode when present and recognized.
func (h *Heartbeat) ReportedMode() (Mode, bool) {
	if h == nil || h.Mode == nil || !h.Mode.Valid() {
		return "", false
	}
	return *h.Mode, true
}

// Uptime returns uptime_ms as a duration.
func (h *Heartbeat) Uptime() (time.Duration, bool) {
	if h == nil || h.UptimeMs == nil {
		return 0, false
	}
	return time.Duration(*h.UptimeMs) * time.Millisecond, true
}

// Clone returns a deep copy so stored heartbeats are never shared.
func (h *Heartbeat) Clone() *Heartbeat {
	if h == nil {
		return nil
	}
	dup := Heartbeat{
		TempC:      clonePtr(h.TempC),
		Humidity:   clonePtr(h.Humidity),
		Rain:       clonePtr(h.Rain),
		Mode:       clonePtr(h.Mode),
		UptimeMs:   clonePtr(h.UptimeMs),
		ReceivedAt: clonePtr(h.ReceivedAt),
	}
	return &dup
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// CommandRequest is the body accepted by /cmd/.
type CommandRequest struct {
	Command Command `json:"command"`
}

// CommandResponse is the success body returned by the bridge.
type CommandResponse struct {
	Status string  `json:"status"`
	Sent   Command `json:"sent"`
}

// ErrorResponse is the failure body used by the API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
