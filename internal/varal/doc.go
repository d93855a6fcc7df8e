// Package varal provides the wire types and HTTP client for the clothesline
// controller API.
//
// # Overview
//
// The device publishes a heartbeat (temperature, humidity, rain flag, mode,
// uptime) that a bridge stamps with its own clock as received_at. Clients
// never receive pushes: they poll the last heartbeat and post mode-change
// commands.
//
// # Endpoints
//
//   - GET  {base}/heartbeat/  last heartbeat, all fields optional
//   - POST {base}/cmd/        {"command": "AUTO" | "OPEN" | "CLOSE"}
//
// # Errors
//
// Every failure returned by the client is one of:
//
//   - *TransportError: the request never got a response (DNS, refused, timeout)
//   - *HTTPError: non-2xx status, with Detail taken from a JSON "detail" string
//   - *ParseError: 2xx body that is not valid JSON
//   - a wrapped context.Canceled when the caller cancelled the request
//
// IsCancelled separates the last case, which callers treat as "superseded"
// rather than as a failure. CommandErrorMessage turns a command failure into
// operator-facing text.
//
// # Usage Example
//
//	client, err := varal.NewClient("http://127.0.0.1:8000")
//	if err != nil {
//		return err
//	}
//	hb, err := client.FetchHeartbeat(ctx)
//	if err != nil && !varal.IsCancelled(err) {
//		log.Printf("poll failed (%s): %v", varal.Kind(err), err)
//	}
//	err = client.SendCommand(ctx, varal.CommandOpen)
package varal
