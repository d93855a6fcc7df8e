package bridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "tcp://127.0.0.1:1883", cfg.MQTT.Broker)
	assert.Equal(t, "casa/varal1/heartbeat", cfg.MQTT.TopicHeartbeat)
	assert.Equal(t, "casa/varal1/cmd", cfg.MQTT.TopicCommand)
	assert.Equal(t, 5*time.Second, cfg.MQTT.PublishTimeout)
	assert.Equal(t, 1.0, cfg.Commands.RatePerSec)
	assert.Equal(t, 3, cfg.Commands.Burst)
	assert.Equal(t, 30*time.Second, cfg.Commands.BreakerOpen)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	content := `
listen: ":9090"
log_level: DEBUG
mqtt:
  broker: ssl://iot.example.com:8883
  client_id: varal-test
  topic_cmd: home/varal/cmd
  publish_timeout: 2s
commands:
  rate_per_sec: 0.5
  burst: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("VARAL_BRIDGE_MQTT_USERNAME", "bridge")
	t.Setenv("VARAL_BRIDGE_LISTEN", ":7000")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Listen, "env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ssl://iot.example.com:8883", cfg.MQTT.Broker)
	assert.Equal(t, "varal-test", cfg.MQTT.ClientID)
	assert.Equal(t, "bridge", cfg.MQTT.Username)
	assert.Equal(t, "home/varal/cmd", cfg.MQTT.TopicCommand)
	assert.Equal(t, "casa/varal1/heartbeat", cfg.MQTT.TopicHeartbeat)
	assert.Equal(t, 2*time.Second, cfg.MQTT.PublishTimeout)
	assert.Equal(t, 0.5, cfg.Commands.RatePerSec)
	assert.Equal(t, 1, cfg.Commands.Burst)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigNonPositiveValuesUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	content := `
commands:
  rate_per_sec: -1
  burst: 0
  breaker_failures: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Commands.RatePerSec)
	assert.Equal(t, 3, cfg.Commands.Burst)
	assert.Equal(t, 3, cfg.Commands.BreakerFailures)
}

func TestValidate(t *testing.T) {
	base := Config{MQTT: MQTTConfig{
		Broker:         "tcp://localhost:1883",
		TopicHeartbeat: "hb",
		TopicCommand:   "cmd",
	}}
	require.NoError(t, base.Validate())

	noBroker := base
	noBroker.MQTT.Broker = ""
	assert.Error(t, noBroker.Validate())

	certOnly := base
	certOnly.MQTT.CertPath = "client.crt"
	assert.Error(t, certOnly.Validate())
}
