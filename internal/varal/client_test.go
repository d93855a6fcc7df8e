package varal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL+"/" {
		t.Fatalf("base = %q, want %q", u.String(), DefaultBaseURL+"/")
	}

	u, err = parseBaseURL("example.com:1234/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "http://example.com:1234/api/" {
		t.Fatalf("base = %q, want http://example.com:1234/api/", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want error")
	}
}

func TestClient_FetchHeartbeatAndSendCommand(t *testing.T) {
	t.Parallel()

	var gotCommand CommandRequest
	var gotUserAgent, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/heartbeat/":
			_, _ = w.Write([]byte(`{"temp_c":18.2,"mode":"AUTO","received_at":1700000000}`))
		case r.Method == http.MethodPost && r.URL.Path == "/cmd/":
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotCommand)
			_, _ = w.Write([]byte(`{"status":"ok","sent":"OPEN"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	hb, err := c.FetchHeartbeat(ctx)
	if err != nil {
		t.Fatalf("FetchHeartbeat returned error: %v", err)
	}
	if mode, ok := hb.ReportedMode(); !ok || mode != ModeAuto {
		t.Fatalf("FetchHeartbeat mode = %q, want AUTO", mode)
	}

	if err := c.SendCommand(ctx, CommandOpen); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	if gotCommand.Command != CommandOpen {
		t.Fatalf("posted command = %q, want OPEN", gotCommand.Command)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "varal/") {
		t.Fatalf("User-Agent = %q, want varal/*", gotUserAgent)
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/heartbeat/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/cmd/":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchHeartbeat(context.Background())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("FetchHeartbeat error = %v, want *ParseError", err)
	}
	if Kind(err) != "parse" {
		t.Fatalf("Kind = %q, want parse", Kind(err))
	}

	err = c.SendCommand(context.Background(), CommandAuto)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusInternalServerError {
		t.Fatalf("SendCommand error = %v, want 500 *HTTPError", err)
	}
	if got := CommandErrorMessage(err); got != GenericCommandError {
		t.Fatalf("CommandErrorMessage = %q, want generic for non-JSON body", got)
	}
}

func TestClient_TrailingDataIsParseError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"garbage after object", `{"mode":"AUTO","received_at":1700000000} not json`},
		{"second object", `{"mode":"AUTO"}{"mode":"FORCE_OPEN"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			hb, err := c.FetchHeartbeat(context.Background())
			if hb != nil {
				t.Fatalf("FetchHeartbeat heartbeat = %+v, want nil", hb)
			}
			if Kind(err) != "parse" {
				t.Fatalf("Kind = %q, want parse (err = %v)", Kind(err), err)
			}
		})
	}
}

func TestClient_TrailingWhitespaceIsAccepted(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"mode\":\"AUTO\"}\n\n"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	hb, err := c.FetchHeartbeat(context.Background())
	if err != nil {
		t.Fatalf("FetchHeartbeat returned error: %v", err)
	}
	if mode, ok := hb.ReportedMode(); !ok || mode != ModeAuto {
		t.Fatalf("ReportedMode = %q, %v; want AUTO", mode, ok)
	}
}

func TestClient_CommandDetailMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"device busy"}`, "device busy"},
		{"detail not a string", `{"detail":[{"msg":"bad"}]}`, GenericCommandError},
		{"empty body", ``, GenericCommandError},
		{"html body", `<html>oops</html>`, GenericCommandError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			err = c.SendCommand(context.Background(), CommandOpen)
			if err == nil {
				t.Fatalf("SendCommand returned nil error, want HTTP error")
			}
			if got := CommandErrorMessage(err); got != tc.want {
				t.Fatalf("CommandErrorMessage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClient_TransportErrorAndCancel(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchHeartbeat(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("FetchHeartbeat error = %v, want *TransportError", err)
	}

	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(block)

	c, err = NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = c.FetchHeartbeat(ctx)
	if !IsCancelled(err) {
		t.Fatalf("FetchHeartbeat error = %v, want cancellation", err)
	}
	if Kind(err) != "cancelled" {
		t.Fatalf("Kind = %q, want cancelled", Kind(err))
	}
}

func TestClient_SendCommandRejectsUnknown(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.SendCommand(context.Background(), Command("SPIN")); err == nil {
		t.Fatalf("SendCommand(SPIN) returned nil error, want error")
	}
}
