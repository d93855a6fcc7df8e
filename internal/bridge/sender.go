package bridge

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/varal"
)

var (
	// ErrThrottled is returned when commands arrive faster than the configured rate.
	ErrThrottled = errors.New("command rate exceeded")
	// ErrUnavailable is returned while the breaker rejects publishes.
	ErrUnavailable = errors.New("command channel unavailable")
)

// CommandPublisher delivers a command to the device.
type CommandPublisher interface {
	Publish(cmd varal.Command) error
}

// Sender guards the publish path with a rate limit and a circuit breaker.
type Sender struct {
	pub     CommandPublisher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics
	log     *logger.Logger
}

// NewSender wraps pub with the limits from cfg.
func NewSender(pub CommandPublisher, cfg CommandConfig, metrics *Metrics, log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Nop()
	}
	fails := uint32(cfg.BreakerFailures)
	s := &Sender{
		pub:     pub,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		metrics: metrics,
		log:     log,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mqtt-publish",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpen,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warnw("breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

// Send publishes cmd unless the caller is throttled or the breaker is open.
func (s *Sender) Send(cmd varal.Command) error {
	if !s.limiter.Allow() {
		s.metrics.Command(ResultThrottled)
		return ErrThrottled
	}
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.pub.Publish(cmd)
	})
	switch {
	case err == nil:
		s.metrics.Command(ResultSent)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.metrics.Command(ResultUnavailable)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		s.metrics.Command(ResultFailed)
		return fmt.Errorf("publish %s: %w", cmd, err)
	}
}

// BreakerState reports the breaker state name for health output.
func (s *Sender) BreakerState() string {
	return s.breaker.State().String()
}
