// Package app wires configuration, the HTTP client, the sync engine and the
// TUI together, and owns the Engine event loop.
//
// # Architecture
//
// Run follows a simple initialization pattern:
//
//  1. Load ~/.config/varal/config.toml and apply flag overrides
//  2. Open the file logger and read user preferences
//  3. Create the varal HTTP client and the shared state.Store
//  4. Start the Engine
//  5. Run the TUI until the user quits or the context is cancelled
//  6. Stop the Engine, cancelling any outstanding fetch
//
// # Engine
//
// The Engine owns a state.Session and is the only goroutine that mutates
// it. Network calls run on short-lived goroutines and post their results
// back as events:
//
//	┌──────────────────────────────────────────────┐
//	│ engine goroutine                             │
//	│  ticker ──> poll() ──> BeginPoll, fetch ctx  │
//	│  events <── fetch result ──> ApplyPoll       │
//	│  events <── Dispatch ──> Session.Dispatch    │
//	│  events <── send result ──> ApplyCommand     │
//	│  events <── feedback timer ──> ExpireFeedback│
//	│  every transition ──> store.Update(View)     │
//	└──────────────────────────────────────────────┘
//
// # Polling Behavior
//
// The first poll runs immediately, then one per interval (default 10s).
// Each poll cancels the previous fetch context before starting, so at most
// one request is outstanding. The session token discards anything a
// superseded fetch returns. Refresh adds an out-of-schedule poll and is
// ignored while a fetch is outstanding. There is no retry or backoff; the
// next tick is the recovery path.
//
// # Commands
//
// Dispatch is ignored while a command is in flight. The submission uses a
// context detached from the engine so it always reaches an outcome. On
// success the engine polls at once to shorten the wait for the confirming
// heartbeat. Feedback is cleared after its TTL by a timer that only clears
// the notice it was created for.
//
// # Teardown
//
// Stop, or cancelling the context given to Start, cancels the outstanding
// fetch, stops the feedback timer and publishes a final view. Results that
// arrive afterwards are dropped.
package app
