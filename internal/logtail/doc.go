// Package logtail reads the tail of a log file and turns structured log
// lines into readable text for the TUI diagnostics view.
//
// # Reading Log Files
//
// Read uses a ring buffer to extract the last maxLines from a file in a
// single pass with O(maxLines) memory. Lines come back in chronological
// order. A non-positive maxLines returns the whole file and a missing file
// returns no lines and no error, so the view can open before anything has
// been logged.
//
//	lines, err := logtail.Read(cfg.LogFile, 500)
//
// # Structured Lines
//
// The client writes zap JSON lines. Parse extracts the time, level,
// component and message, keeping any remaining keys as sorted fields.
// Format renders an entry as
//
//	21:01:05 WARN [engine] heartbeat poll failed kind=http status=503
//
// Lines that are not JSON objects pass through untouched.
package logtail
