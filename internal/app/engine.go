package app

import (
	"context"
	"sync"
	"time"

	"github.com/five82/varal/internal/logger"
	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

const defaultPollInterval = 10 * time.Second

// EngineOptions tune an Engine. Zero values use the defaults.
type EngineOptions struct {
	PollEvery   time.Duration
	StaleAfter  time.Duration
	FeedbackTTL time.Duration
	Logger      *logger.Logger
	Now         func() time.Time
}

// Engine runs the poll schedule and command submissions against a Session.
// Every Session transition happens on the engine goroutine; network calls
// run on their own goroutines and post their results back as events.
type Engine struct {
	api      varal.API
	store    *state.Store
	log      *logger.Logger
	now      func() time.Time
	interval time.Duration

	session *state.Session
	events  chan func(context.Context)
	updates chan struct{}

	// Owned by the engine goroutine.
	fetchCancel   context.CancelFunc
	feedbackTimer *time.Timer

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine wires an engine to api and publishes views into store.
func NewEngine(api varal.API, store *state.Store, opts EngineOptions) *Engine {
	if opts.PollEvery <= 0 {
		opts.PollEvery = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		api:      api,
		store:    store,
		log:      opts.Logger.Named("engine"),
		now:      opts.Now,
		interval: opts.PollEvery,
		session:  state.NewSession(state.Options{StaleAfter: opts.StaleAfter, FeedbackTTL: opts.FeedbackTTL}),
		events:   make(chan func(context.Context), 16),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start issues an immediate poll and then polls on the configured interval
// until ctx is cancelled or Stop is called. It returns immediately.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	go e.run(loopCtx)
}

// Stop cancels any outstanding fetch, halts the schedule and waits for the
// engine goroutine to exit. An engine cannot be restarted.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.stopped = true
	started, cancel := e.started, e.cancel
	e.mu.Unlock()

	if !started {
		close(e.done)
		return
	}
	cancel()
	<-e.done
}

// Updates signals after every published view. Signals coalesce.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Infow("engine started", "interval", e.interval.String())
	e.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return
		case <-ticker.C:
			e.poll(ctx)
		case fn := <-e.events:
			fn(ctx)
		}
	}
}

func (e *Engine) teardown() {
	if e.fetchCancel != nil {
		e.fetchCancel()
		e.fetchCancel = nil
	}
	e.session.CancelPoll()
	if e.feedbackTimer != nil {
		e.feedbackTimer.Stop()
		e.feedbackTimer = nil
	}
	e.publish()
	e.log.Infow("engine stopped")
}

// post queues fn for the engine goroutine. It is dropped once the engine
// has exited. Never call post from the engine goroutine itself.
func (e *Engine) post(fn func(context.Context)) {
	select {
	case e.events <- fn:
	case <-e.done:
	}
}

func (e *Engine) publish() {
	e.store.Update(e.session.View(e.now()))
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
