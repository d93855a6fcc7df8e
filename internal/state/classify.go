package state

import "time"

// ConnectionState summarizes link health from heartbeat recency and poll outcome.
type ConnectionState string

const (
	Connecting ConnectionState = "connecting"
	Online     ConnectionState = "online"
	Stale      ConnectionState = "stale"
	Offline    ConnectionState = "offline"
)

// StaleThreshold is the heartbeat age past which data is considered stale.
const StaleThreshold = 60 * time.Second

// Classify derives the connection state. A zero last means no heartbeat
// timestamp is known. A fresh heartbeat followed by a failed poll still
// reads as offline.
func Classify(last, now time.Time, hasError, isLoading bool) ConnectionState {
	return classify(last, now, StaleThreshold, hasError, isLoading)
}

func classify(last, now time.Time, staleAfter time.Duration, hasError, isLoading bool) ConnectionState {
	hasTimestamp := !last.IsZero()
	switch {
	case !hasTimestamp && isLoading && !hasError:
		return Connecting
	case hasError && !hasTimestamp:
		return Offline
	case hasTimestamp && now.Sub(last) > staleAfter:
		if hasError {
			return Offline
		}
		return Stale
	case hasTimestamp:
		if hasError {
			return Offline
		}
		return Online
	case hasError:
		return Offline
	default:
		return Connecting
	}
}
