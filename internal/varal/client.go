package varal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HeartbeatFetcher reads the device's last known heartbeat.
type HeartbeatFetcher interface {
	FetchHeartbeat(ctx context.Context) (*Heartbeat, error)
}

// CommandSender submits a mode-change command.
type CommandSender interface {
	SendCommand(ctx context.Context, cmd Command) error
}

// API is the full remote surface used by the client.
type API interface {
	HeartbeatFetcher
	CommandSender
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the varal HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	defaultUserAgent = "varal/0.1"
	requestTimeout   = 8 * time.Second
	maxErrorBody     = 64 * 1024
)

// NewClient builds a Client for the given base URL ("host:port" is accepted).
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchHeartbeat retrieves the last heartbeat the server holds.
func (c *Client) FetchHeartbeat(ctx context.Context) (*Heartbeat, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Heartbeat
	if err := c.do(ctx, http.MethodGet, "heartbeat/", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SendCommand posts a command. The response body is ignored on success.
func (c *Client) SendCommand(ctx context.Context, cmd Command) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if _, ok := cmd.TargetMode(); !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	body, err := json.Marshal(CommandRequest{Command: cmd})
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return c.do(ctx, http.MethodPost, "cmd/", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("execute request: %w", ctxErr)
		}
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Path: "/" + path, Status: resp.StatusCode, Detail: parseDetail(raw)}
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(dest); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("read response: %w", ctxErr)
		}
		return &ParseError{Err: err}
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("read response: %w", ctxErr)
		}
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return &ParseError{Err: err}
	}
	return nil
}

// parseDetail extracts a string "detail" field from a JSON error body.
func parseDetail(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	detail, ok := payload.Detail.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(detail)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
