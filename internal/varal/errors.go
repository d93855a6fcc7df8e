package varal

import (
	"context"
	"errors"
	"fmt"
)

// GenericCommandError is shown when a failed command carries no usable detail.
const GenericCommandError = "could not send command"

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("execute request: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Detail is the server-provided
// message when the body was JSON with a string "detail" field.
type HTTPError struct {
	Path   string
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// ParseError reports a 2xx response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("decode response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// IsCancelled reports whether err comes from a request whose context was
// cancelled. Cancellation is not a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Kind names the error class for diagnostics.
func Kind(err error) string {
	var (
		transport *TransportError
		httpErr   *HTTPError
		parse     *ParseError
	)
	switch {
	case err == nil:
		return ""
	case IsCancelled(err):
		return "cancelled"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &parse):
		return "parse"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "unknown"
	}
}

// CommandErrorMessage returns the operator-facing text for a failed command.
func CommandErrorMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	return GenericCommandError
}
