package bridge

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/varal"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }

func TestHeartbeatCacheStampsReceivedAt(t *testing.T) {
	clock := &stepClock{t: time.Unix(1_700_000_000, 500_000_000)}
	cache := NewHeartbeatCache(clock.now)

	_, ok := cache.Last()
	assert.False(t, ok)

	hb, err := cache.Ingest([]byte(`{"temp_c":21.5,"humidity":60,"rain":true,"mode":"FORCE_OPEN","uptime_ms":90000,"received_at":1}`))
	require.NoError(t, err)
	require.NotNil(t, hb.ReceivedAt)
	assert.InDelta(t, 1_700_000_000.5, *hb.ReceivedAt, 1e-6, "device timestamps are replaced")

	last, ok := cache.Last()
	require.True(t, ok)
	mode, ok := last.ReportedMode()
	require.True(t, ok)
	assert.Equal(t, varal.ModeForceOpen, mode)
	assert.Equal(t, 21.5, *last.TempC)

	clock.t = clock.t.Add(7 * time.Second)
	age, ok := cache.Age()
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, age)
}

func TestHeartbeatCacheRejectsKeepPrevious(t *testing.T) {
	cache := NewHeartbeatCache(func() time.Time { return time.Unix(100, 0) })
	_, err := cache.Ingest([]byte(`{"mode":"AUTO"}`))
	require.NoError(t, err)

	_, err = cache.Ingest([]byte("ESP32 booting"))
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = cache.Ingest([]byte(`{"mode":"SIDEWAYS"}`))
	assert.Error(t, err)

	_, err = cache.Ingest([]byte(`{"temp_c":"warm"}`))
	assert.Error(t, err)

	last, ok := cache.Last()
	require.True(t, ok)
	mode, _ := last.ReportedMode()
	assert.Equal(t, varal.ModeAuto, mode)
}

func TestHeartbeatCacheLastReturnsCopy(t *testing.T) {
	cache := NewHeartbeatCache(nil)
	_, err := cache.Ingest([]byte(`{"temp_c":20}`))
	require.NoError(t, err)

	first, _ := cache.Last()
	*first.TempC = 99

	second, _ := cache.Last()
	assert.Equal(t, 20.0, *second.TempC)
}

func TestIngestHandlerCountsOutcomes(t *testing.T) {
	cache := NewHeartbeatCache(nil)
	metrics := NewMetrics(cache)
	handle := ingestHandler(cache, metrics, logger.Nop())

	handle([]byte(`{"mode":"AUTO"}`))
	handle([]byte("hello"))
	handle([]byte(`{"mode":1}`))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.heartbeats.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.heartbeats.WithLabelValues("ignored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.heartbeats.WithLabelValues("invalid")))
}
