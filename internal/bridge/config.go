package bridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. VARAL_BRIDGE_MQTT_BROKER.
const EnvPrefix = "VARAL_BRIDGE"

// Config holds the bridge settings.
type Config struct {
	Listen   string
	LogLevel string
	MQTT     MQTTConfig
	Commands CommandConfig
}

// MQTTConfig describes the broker link.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicHeartbeat string
	TopicCommand   string
	CAPath         string
	CertPath       string
	KeyPath        string
	ConnectRetries int
	PublishTimeout time.Duration
}

// CommandConfig tunes the command path.
type CommandConfig struct {
	RatePerSec      float64
	Burst           int
	BreakerFailures int
	BreakerOpen     time.Duration
}

const (
	defaultListen          = ":8000"
	defaultBroker          = "tcp://127.0.0.1:1883"
	defaultClientID        = "esp32_varal_backend"
	defaultTopicHeartbeat  = "casa/varal1/heartbeat"
	defaultTopicCommand    = "casa/varal1/cmd"
	defaultConnectRetries  = 5
	defaultPublishTimeout  = 5 * time.Second
	defaultRatePerSec      = 1.0
	defaultBurst           = 3
	defaultBreakerFailures = 3
	defaultBreakerOpen     = 30 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", defaultListen)
	v.SetDefault("log_level", "info")
	v.SetDefault("mqtt.broker", defaultBroker)
	v.SetDefault("mqtt.client_id", defaultClientID)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_heartbeat", defaultTopicHeartbeat)
	v.SetDefault("mqtt.topic_cmd", defaultTopicCommand)
	v.SetDefault("mqtt.ca_path", "")
	v.SetDefault("mqtt.cert_path", "")
	v.SetDefault("mqtt.key_path", "")
	v.SetDefault("mqtt.connect_retries", defaultConnectRetries)
	v.SetDefault("mqtt.publish_timeout", defaultPublishTimeout)
	v.SetDefault("commands.rate_per_sec", defaultRatePerSec)
	v.SetDefault("commands.burst", defaultBurst)
	v.SetDefault("commands.breaker_failures", defaultBreakerFailures)
	v.SetDefault("commands.breaker_open", defaultBreakerOpen)
}

// LoadConfig reads bridge settings. An explicit path must exist; without one
// bridge.yaml is looked up in the working directory and ./configs, and a
// missing file leaves defaults plus environment overrides.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read bridge config: %w", err)
		}
	} else {
		v.SetConfigName("bridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read bridge config: %w", err)
			}
		}
	}

	cfg := Config{
		Listen:   strings.TrimSpace(v.GetString("listen")),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		MQTT: MQTTConfig{
			Broker:         strings.TrimSpace(v.GetString("mqtt.broker")),
			ClientID:       strings.TrimSpace(v.GetString("mqtt.client_id")),
			Username:       v.GetString("mqtt.username"),
			Password:       v.GetString("mqtt.password"),
			TopicHeartbeat: strings.TrimSpace(v.GetString("mqtt.topic_heartbeat")),
			TopicCommand:   strings.TrimSpace(v.GetString("mqtt.topic_cmd")),
			CAPath:         strings.TrimSpace(v.GetString("mqtt.ca_path")),
			CertPath:       strings.TrimSpace(v.GetString("mqtt.cert_path")),
			KeyPath:        strings.TrimSpace(v.GetString("mqtt.key_path")),
			ConnectRetries: v.GetInt("mqtt.connect_retries"),
			PublishTimeout: v.GetDuration("mqtt.publish_timeout"),
		},
		Commands: CommandConfig{
			RatePerSec:      v.GetFloat64("commands.rate_per_sec"),
			Burst:           v.GetInt("commands.burst"),
			BreakerFailures: v.GetInt("commands.breaker_failures"),
			BreakerOpen:     v.GetDuration("commands.breaker_open"),
		},
	}
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize replaces non-positive tuning values with defaults.
func normalize(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.MQTT.ConnectRetries <= 0 {
		cfg.MQTT.ConnectRetries = defaultConnectRetries
	}
	if cfg.MQTT.PublishTimeout <= 0 {
		cfg.MQTT.PublishTimeout = defaultPublishTimeout
	}
	if cfg.Commands.RatePerSec <= 0 {
		cfg.Commands.RatePerSec = defaultRatePerSec
	}
	if cfg.Commands.Burst <= 0 {
		cfg.Commands.Burst = defaultBurst
	}
	if cfg.Commands.BreakerFailures <= 0 {
		cfg.Commands.BreakerFailures = defaultBreakerFailures
	}
	if cfg.Commands.BreakerOpen <= 0 {
		cfg.Commands.BreakerOpen = defaultBreakerOpen
	}
}

// Validate checks that the link can be configured.
func (c Config) Validate() error {
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if c.MQTT.TopicHeartbeat == "" || c.MQTT.TopicCommand == "" {
		return errors.New("mqtt topics must not be empty")
	}
	if (c.MQTT.CertPath == "") != (c.MQTT.KeyPath == "") {
		return errors.New("mqtt.cert_path and mqtt.key_path must be set together")
	}
	return nil
}
