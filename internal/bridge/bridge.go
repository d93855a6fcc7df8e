package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/five82/varal/internal/logger"
)

// Run starts the bridge and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	gin.SetMode(gin.ReleaseMode)

	cache := NewHeartbeatCache(nil)
	metrics := NewMetrics(cache)
	mqttLog := log.Named("mqtt")

	link, err := Dial(ctx, cfg.MQTT, ingestHandler(cache, metrics, mqttLog), mqttLog)
	if err != nil {
		return err
	}
	defer link.Close()

	sender := NewSender(link, cfg.Commands, metrics, log.Named("commands"))
	api := NewAPI(cache, sender, link, metrics, log.Named("http"))

	log.Infow("bridge listening", "addr", cfg.Listen, "heartbeat_topic", cfg.MQTT.TopicHeartbeat, "command_topic", cfg.MQTT.TopicCommand)
	if err := NewServer(cfg.Listen, api.Routes()).Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Infow("bridge stopped")
	return nil
}

// ingestHandler stores heartbeat payloads and counts the outcome.
func ingestHandler(cache *HeartbeatCache, metrics *Metrics, log *logger.Logger) func([]byte) {
	return func(payload []byte) {
		hb, err := cache.Ingest(payload)
		switch {
		case errors.Is(err, ErrNotJSON):
			metrics.Heartbeat("ignored")
			log.Debugw("ignored non-JSON heartbeat", "payload", string(payload))
		case err != nil:
			metrics.Heartbeat("invalid")
			log.Warnw("rejected heartbeat", "error", err)
		default:
			metrics.Heartbeat("stored")
			log.Debugw("heartbeat stored", "received_at", *hb.ReceivedAt)
		}
	}
}
