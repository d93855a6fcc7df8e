package state

import (
	"time"

	"github.com/five82/varal/internal/varal"
)

// View is a read-only picture of a Session at one instant.
type View struct {
	Heartbeat    *varal.Heartbeat
	LastReceived time.Time
	PollFailed   bool
	LastError    error
	Loading      bool

	Mode        varal.Mode
	HasMode     bool
	Pending     *PendingCommand
	InFlight    varal.Command
	AwaitingAck bool
	Feedback    *Feedback

	StaleAfter time.Duration
	UpdatedAt  time.Time
}

// Connection classifies the view at now. Renderers call this on every
// frame so that staleness advances without new data.
func (v View) Connection(now time.Time) ConnectionState {
	staleAfter := v.StaleAfter
	if staleAfter <= 0 {
		staleAfter = StaleThreshold
	}
	return classify(v.LastReceived, now, staleAfter, v.PollFailed, v.Loading)
}

// Optimistic reports whether the displayed mode comes from a pending command.
func (v View) Optimistic() bool {
	return v.Pending != nil
}

// ControlsVisible reports whether quick controls are offered at all. They
// are hidden while the link is stale or offline.
func (v View) ControlsVisible(now time.Time) bool {
	switch v.Connection(now) {
	case Online, Connecting:
		return true
	}
	return false
}

// CommandEnabled reports whether the operator may issue cmd right now.
func (v View) CommandEnabled(cmd varal.Command, now time.Time) bool {
	target, ok := cmd.TargetMode()
	if !ok || !v.ControlsVisible(now) {
		return false
	}
	if v.AwaitingAck || v.InFlight != "" {
		return false
	}
	return !(v.HasMode && v.Mode == target)
}

// HeartbeatAge returns how old the last heartbeat is at now.
func (v View) HeartbeatAge(now time.Time) (time.Duration, bool) {
	if v.LastReceived.IsZero() {
		return 0, false
	}
	age := now.Sub(v.LastReceived)
	if age < 0 {
		age = 0
	}
	return age, true
}
