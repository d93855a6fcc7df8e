package app

import (
	"context"
	"time"

	"github.com/five82/varal/internal/state"
	"github.com/five82/varal/internal/varal"
)

// Dispatch submits cmd. It is ignored while another command is in flight.
// The submission is never cancelled once issued.
func (e *Engine) Dispatch(cmd varal.Command) {
	e.post(func(ctx context.Context) { e.dispatch(ctx, cmd) })
}

func (e *Engine) dispatch(ctx context.Context, cmd varal.Command) {
	tok, ok := e.session.Dispatch(cmd, e.now())
	if !ok {
		e.log.Debugw("command ignored", "command", string(cmd))
		return
	}
	e.stopFeedbackTimer()
	e.publish()
	e.log.Infow("command dispatched", "command", string(cmd))

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		err := e.api.SendCommand(sendCtx, cmd)
		e.post(func(ctx context.Context) { e.applyCommand(ctx, tok, cmd, err) })
	}()
}

func (e *Engine) applyCommand(ctx context.Context, tok state.CommandToken, cmd varal.Command, err error) {
	fb, ok := e.session.ApplyCommand(tok, err, e.now())
	if !ok {
		return
	}
	e.scheduleFeedbackExpiry(fb)
	if err != nil {
		e.log.Warnw("command failed", "command", string(cmd), "kind", varal.Kind(err), "error", err)
		e.publish()
		return
	}
	e.log.Infow("command sent", "command", string(cmd))
	e.publish()
	// An extra poll shortens the wait for the acknowledging heartbeat.
	e.poll(ctx)
}

// scheduleFeedbackExpiry clears fb after the TTL unless a newer notice
// replaced it first.
func (e *Engine) scheduleFeedbackExpiry(fb state.Feedback) {
	e.stopFeedbackTimer()
	e.feedbackTimer = time.AfterFunc(e.session.FeedbackTTL(), func() {
		e.post(func(context.Context) {
			if e.session.ExpireFeedback(fb.ID) {
				e.publish()
			}
		})
	})
}

func (e *Engine) stopFeedbackTimer() {
	if e.feedbackTimer != nil {
		e.feedbackTimer.Stop()
		e.feedbackTimer = nil
	}
}
