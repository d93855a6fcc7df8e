package app

import (
	"context"

	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

// Refresh requests an out-of-schedule poll. It is ignored while a fetch is
// already outstanding.
func (e *Engine) Refresh() {
	e.post(func(ctx context.Context) {
		if e.session.Loading() {
			e.log.Debugw("manual refresh ignored, fetch outstanding")
			return
		}
		e.poll(ctx)
	})
}

// poll supersedes any outstanding fetch and starts a new one.
func (e *Engine) poll(ctx context.Context) {
	if e.fetchCancel != nil {
		e.fetchCancel()
	}
	tok := e.session.BeginPoll()
	fetchCtx, cancel := context.WithCancel(ctx)
	e.fetchCancel = cancel
	e.publish()

	go func() {
		defer cancel()
		hb, err := e.api.FetchHeartbeat(fetchCtx)
		e.post(func(context.Context) { e.applyPoll(tok, hb, err) })
	}()
}

func (e *Engine) applyPoll(tok state.PollToken, hb *varal.Heartbeat, err error) {
	outcome := e.session.ApplyPoll(tok, hb, err)
	switch outcome {
	case state.PollDiscarded:
		if err != nil {
			e.log.Debugw("fetch result discarded", "token", uint64(tok), "error", err)
		}
		return
	case state.PollFailed:
		e.log.Warnw("heartbeat poll failed", "kind", varal.Kind(err), "error", err)
	case state.PollReconciled:
		mode, _ := hb.ReportedMode()
		e.log.Infow("pending command acknowledged", "mode", string(mode))
	default:
		e.log.Debugw("heartbeat applied")
	}
	e.publish()
}
