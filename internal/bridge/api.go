package bridge

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/varal"
)

// Error details returned to clients. The TUI shows them verbatim.
const (
	detailNoHeartbeat    = "no heartbeat received from the device yet"
	detailInvalidCommand = "invalid command, use OPEN, CLOSE or AUTO"
	detailInvalidBody    = "request body must be JSON with a command field"
	detailThrottled      = "too many commands, try again shortly"
	detailPublishFailed  = "failed to publish command over MQTT"
)

// LinkStatus reports broker connectivity.
type LinkStatus interface {
	IsConnected() bool
}

// API serves the heartbeat and command endpoints.
type API struct {
	heartbeats HeartbeatSource
	sender     *Sender
	link       LinkStatus
	metrics    *Metrics
	log        *logger.Logger
}

// NewAPI wires the HTTP layer to the bridge components.
func NewAPI(heartbeats HeartbeatSource, sender *Sender, link LinkStatus, metrics *Metrics, log *logger.Logger) *API {
	if log == nil {
		log = logger.Nop()
	}
	return &API{heartbeats: heartbeats, sender: sender, link: link, metrics: metrics, log: log}
}

// Routes builds the gin router.
func (a *API) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/heartbeat/", a.getHeartbeat)
	router.POST("/cmd/", a.postCommand)
	router.GET("/healthz", a.health)
	if a.metrics != nil {
		router.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	}
	return router
}

func (a *API) getHeartbeat(c *gin.Context) {
	hb, ok := a.heartbeats.Last()
	if !ok {
		c.JSON(http.StatusNotFound, varal.ErrorResponse{Detail: detailNoHeartbeat})
		return
	}
	c.JSON(http.StatusOK, hb)
}

type commandBody struct {
	Command *string `json:"command"`
}

func (a *API) postCommand(c *gin.Context) {
	id := uuid.NewString()
	var body commandBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Command == nil {
		a.metrics.Command(ResultInvalid)
		c.JSON(http.StatusUnprocessableEntity, varal.ErrorResponse{Detail: detailInvalidBody})
		return
	}

	cmd := varal.Command(strings.ToUpper(strings.TrimSpace(*body.Command)))
	if _, ok := cmd.TargetMode(); !ok {
		a.metrics.Command(ResultInvalid)
		a.log.Infow("command rejected", "command_id", id, "command", *body.Command)
		c.JSON(http.StatusBadRequest, varal.ErrorResponse{Detail: detailInvalidCommand})
		return
	}

	err := a.sender.Send(cmd)
	switch {
	case err == nil:
		a.log.Infow("command sent", "command_id", id, "command", string(cmd))
		c.JSON(http.StatusOK, varal.CommandResponse{Status: "ok", Sent: cmd})
	case errors.Is(err, ErrThrottled):
		a.log.Warnw("command throttled", "command_id", id, "command", string(cmd))
		c.JSON(http.StatusTooManyRequests, varal.ErrorResponse{Detail: detailThrottled})
	default:
		a.log.Errorw("command publish failed", "command_id", id, "command", string(cmd), "error", err)
		c.JSON(http.StatusInternalServerError, varal.ErrorResponse{Detail: detailPublishFailed})
	}
}

type healthStatus struct {
	Status          string   `json:"status"`
	MQTTConnected   bool     `json:"mqtt_connected"`
	HeartbeatAgeSec *float64 `json:"heartbeat_age_sec"`
	Breaker         string   `json:"breaker"`
}

func (a *API) health(c *gin.Context) {
	st := healthStatus{
		Status:        "degraded",
		MQTTConnected: a.link != nil && a.link.IsConnected(),
		Breaker:       a.sender.BreakerState(),
	}
	if age, ok := a.heartbeats.Age(); ok {
		secs := age.Seconds()
		st.HeartbeatAgeSec = &secs
	}
	if st.MQTTConnected {
		st.Status = "ok"
	}
	c.JSON(http.StatusOK, st)
}
