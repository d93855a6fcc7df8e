package bridge

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/varal"
)

const (
	heartbeatQoS      = 0
	commandQoS        = 1
	disconnectQuiesce = 250
	keepAlive         = 60 * time.Second
	connectMaxElapsed = 30 * time.Second
)

var errNotConnected = errors.New("mqtt link is not connected")

// Link is the bridge's connection to the device broker.
type Link struct {
	client mqtt.Client
	cfg    MQTTConfig
	log    *logger.Logger
}

// Dial connects to the broker with exponential backoff. onHeartbeat receives
// every payload on the heartbeat topic; the subscription is renewed after
// each reconnect.
func Dial(ctx context.Context, cfg MQTTConfig, onHeartbeat func([]byte), log *logger.Logger) (*Link, error) {
	if log == nil {
		log = logger.Nop()
	}
	tlsCfg, err := tlsConfig(cfg)
	if err != nil {
		return nil, err
	}

	l := &Link{cfg: cfg, log: log}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID(cfg.ClientID))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(keepAlive)
	opts.SetAutoReconnect(true)
	if tlsCfg != nil {
		opts.SetTLSConfig(tlsCfg)
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.Infow("connected to broker", "broker", cfg.Broker)
		token := c.Subscribe(cfg.TopicHeartbeat, heartbeatQoS, func(_ mqtt.Client, msg mqtt.Message) {
			onHeartbeat(msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			log.Errorw("subscribe failed", "topic", cfg.TopicHeartbeat, "error", token.Error())
			return
		}
		log.Infow("subscribed", "topic", cfg.TopicHeartbeat)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnw("broker connection lost", "error", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectMaxElapsed
	retries := uint64(max(cfg.ConnectRetries-1, 0))

	err = backoff.Retry(func() error {
		client := mqtt.NewClient(opts)
		token := client.Connect()
		if token.Wait() && token.Error() != nil {
			log.Warnw("broker connect failed", "broker", cfg.Broker, "error", token.Error())
			return token.Error()
		}
		l.client = client
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return l, nil
}

// Publish sends cmd on the command topic and waits for the broker ack.
func (l *Link) Publish(cmd varal.Command) error {
	if !l.IsConnected() {
		return errNotConnected
	}
	token := l.client.Publish(l.cfg.TopicCommand, commandQoS, false, string(cmd))
	if !token.WaitTimeout(l.cfg.PublishTimeout) {
		return fmt.Errorf("publish timed out after %s", l.cfg.PublishTimeout)
	}
	if err := token.Error(); err != nil {
		return err
	}
	l.log.Infow("command published", "topic", l.cfg.TopicCommand, "command", string(cmd))
	return nil
}

// IsConnected reports whether the broker connection is currently open.
func (l *Link) IsConnected() bool {
	return l != nil && l.client != nil && l.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (l *Link) Close() {
	if l == nil || l.client == nil {
		return
	}
	l.client.Disconnect(disconnectQuiesce)
	l.log.Infow("broker connection closed")
}

// clientID appends a random suffix so restarts never collide with a
// lingering session on the broker.
func clientID(base string) string {
	suffix := uuid.NewString()[:8]
	if base == "" {
		return "varal-bridge-" + suffix
	}
	return base + "-" + suffix
}

// tlsConfig returns nil when no certificate material is configured.
func tlsConfig(cfg MQTTConfig) (*tls.Config, error) {
	if cfg.CAPath == "" && cfg.CertPath == "" {
		return nil, nil
	}
	tc := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CAPath != "" {
		pem, err := os.ReadFile(cfg.CAPath)
		if err != nil {
			return nil, fmt.Errorf("read ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("read ca: no certificates in %s", cfg.CAPath)
		}
		tc.RootCAs = pool
	}
	if cfg.CertPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}
