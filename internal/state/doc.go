// Package state holds the synchronization state of the Varal dashboard.
//
// # Overview
//
// A Session tracks everything the dashboard knows about the device: the
// latest heartbeat, whether the last poll failed, whether a fetch is
// outstanding, the optimistic pending command and the current feedback
// notice. Session methods are pure transitions. They perform no I/O and
// take the current time as an argument, so the engine in internal/app can
// serialize them on one goroutine and tests can drive them directly.
//
// # Connection Classification
//
// Classify derives a ConnectionState from heartbeat recency and poll
// outcome:
//
//	no timestamp, loading, no error  → connecting
//	error, no timestamp              → offline
//	age > 60s                        → stale (offline if error)
//	timestamp present                → online (offline if error)
//	otherwise                        → connecting
//
// The age comparison is strict: a heartbeat exactly 60s old is still
// online. Views reclassify on every render so data goes stale without a
// new poll.
//
// # Tokens
//
// Every fetch receives a PollToken from BeginPoll. ApplyPoll ignores any
// result whose token has been superseded, which keeps a slow response from
// overwriting newer data. Cancelled fetches are dropped the same way and
// leave the error flag untouched.
//
// Commands use a CommandToken. Only one command may be in flight; Dispatch
// returns false for a second one and changes nothing.
//
// # Optimistic Commands
//
//	Dispatch(OPEN)        → pending FORCE_OPEN, awaiting ack
//	ApplyCommand(ok)      → "command sent", still awaiting ack
//	ApplyCommand(err)     → pending dropped, error notice
//	ApplyPoll(newer hb)   → pending dropped, device mode shown
//
// While a command is pending the displayed mode is its target mode. A
// heartbeat whose received_at is at or after the issue instant reconciles
// it. Older heartbeats keep the overlay.
//
// # Feedback
//
// Each SetFeedback call gets a fresh ID. ExpireFeedback clears the notice
// only when the ID still matches, so a late timer never removes a newer
// notice. View also hides notices older than the configured TTL.
//
// # Store
//
// Store publishes the latest View under a sync.RWMutex. View returns deep
// copies so renderers cannot mutate the engine's state:
//
//	engine goroutine:  store.Update(session.View(now))
//	UI goroutine:      v := store.View(); render(v)
//
// The zero Store is ready to use.
package state
