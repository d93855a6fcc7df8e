// Package ui provides the terminal dashboard for the Varal clothesline.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model never talks to the network: it
// reads immutable state.View values from the shared state.Store and sends
// operator intent to a Controller (the app.Engine). The engine signals on
// Updates after every published view and the model re-reads the store.
// A one-second tick re-reads as well so the connection badge turns stale
// without new data.
//
// # Package Structure
//
//   - app.go: Model, Update loop, messages and Run
//   - header.go: logo, connection badge, heartbeat age, command bar
//   - dashboard.go: metrics card, quick controls, feedback banner
//   - logs.go: diagnostics view over the client's own log file
//   - format.go: value formatting (temperature, uptime, relative age)
//   - theme.go, style_helpers.go: palettes and lipgloss helpers
//   - keys.go, help.go: key bindings and the help overlay
//
// # Quick Controls
//
// Controls are shown only while the connection is online or connecting.
// A button is disabled while a command is in flight, while the last
// command awaits its confirming heartbeat, or when it targets the mode
// already displayed. While a command is pending the displayed mode is its
// target, marked "awaiting confirmation".
//
// # Key Bindings
//
//   - a / o / c: Automatic, force open, force close
//   - r: Refresh now (ignored while a fetch is outstanding)
//   - l: Diagnostics log, esc returns
//   - j/k, g/G, pgup/pgdown: Scroll the log
//   - T: Cycle theme (saved to prefs)
//   - h or ?: Help
//   - q or ctrl+c: Quit
package ui
