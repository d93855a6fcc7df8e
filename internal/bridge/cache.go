package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/varal/internal/varal"
)

// ErrNotJSON marks heartbeat payloads that are not JSON objects. The firmware
// publishes boot banners on the same topic; those are skipped.
var ErrNotJSON = errors.New("heartbeat payload is not a JSON object")

// HeartbeatSource exposes the latest heartbeat.
type HeartbeatSource interface {
	Last() (*varal.Heartbeat, bool)
	Age() (time.Duration, bool)
}

// HeartbeatCache keeps the last heartbeat the device published.
type HeartbeatCache struct {
	mu   sync.RWMutex
	last *varal.Heartbeat
	at   time.Time
	now  func() time.Time
}

// NewHeartbeatCache returns an empty cache. now defaults to time.Now.
func NewHeartbeatCache(now func() time.Time) *HeartbeatCache {
	if now == nil {
		now = time.Now
	}
	return &HeartbeatCache{now: now}
}

// deviceHeartbeat is what the firmware sends. received_at is never trusted
// from the device.
type deviceHeartbeat struct {
	TempC    *float64    `json:"temp_c"`
	Humidity *float64    `json:"humidity"`
	Rain     *bool       `json:"rain"`
	Mode     *varal.Mode `json:"mode"`
	UptimeMs *int64      `json:"uptime_ms"`
}

// Ingest decodes a device payload, stamps it with the bridge clock and
// stores it. The previous heartbeat is kept when the payload is rejected.
func (c *HeartbeatCache) Ingest(payload []byte) (*varal.Heartbeat, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotJSON
	}

	var raw deviceHeartbeat
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode heartbeat: %w", err)
	}
	if raw.Mode != nil && !raw.Mode.Valid() {
		return nil, fmt.Errorf("decode heartbeat: unknown mode %q", *raw.Mode)
	}

	now := c.now()
	receivedAt := float64(now.UnixNano()) / 1e9
	hb := &varal.Heartbeat{
		TempC:      raw.TempC,
		Humidity:   raw.Humidity,
		Rain:       raw.Rain,
		Mode:       raw.Mode,
		UptimeMs:   raw.UptimeMs,
		ReceivedAt: &receivedAt,
	}

	c.mu.Lock()
	c.last = hb
	c.at = now
	c.mu.Unlock()
	return hb.Clone(), nil
}

// Last returns a copy of the stored heartbeat.
func (c *HeartbeatCache) Last() (*varal.Heartbeat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return nil, false
	}
	return c.last.Clone(), true
}

// Age reports how long ago the stored heartbeat arrived.
func (c *HeartbeatCache) Age() (time.Duration, bool) {
	c.mu.RLock()
	at := c.at
	ok := c.last != nil
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return c.now().Sub(at), true
}
