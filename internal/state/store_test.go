package state

import (
	"testing"
	"time"

	"github.com/five82/varal/internal/varal"
)

func TestStore_ZeroValue(t *testing.T) {
	var s Store
	v := s.View()
	if v.Heartbeat != nil || v.Pending != nil || v.Feedback != nil {
		t.Fatalf("zero Store view = %+v, want empty", v)
	}
}

func TestStore_ViewIsIndependentCopy(t *testing.T) {
	var s Store
	now := time.Unix(1_700_000_000, 0)

	sess := NewSession(Options{})
	tok := sess.BeginPoll()
	sess.ApplyPoll(tok, heartbeatAt(now, varal.ModeAuto), nil)
	sess.Dispatch(varal.CommandOpen, now)
	sess.SetFeedback(FeedbackSuccess, "ok", now)
	s.Update(sess.View(now))

	v := s.View()
	*v.Heartbeat.Mode = varal.ModeForceClose
	v.Pending.Mode = varal.ModeForceClose
	v.Feedback.Message = "changed"

	v2 := s.View()
	if *v2.Heartbeat.Mode != varal.ModeAuto {
		t.Fatalf("heartbeat mode = %q, want AUTO; View should clone heartbeat", *v2.Heartbeat.Mode)
	}
	if v2.Pending.Mode != varal.ModeForceOpen {
		t.Fatalf("pending mode = %q, want FORCE_OPEN; View should clone pending", v2.Pending.Mode)
	}
	if v2.Feedback.Message != "ok" {
		t.Fatalf("feedback = %q, want ok; View should clone feedback", v2.Feedback.Message)
	}
}

func TestStore_ViewKeepsErrorIdentity(t *testing.T) {
	var s Store
	origErr := &varal.HTTPError{Path: "/heartbeat/", Status: 503}
	s.Update(View{PollFailed: true, LastError: origErr})

	v := s.View()
	if v.LastError != error(origErr) {
		t.Fatalf("LastError = %#v, want the stored error unchanged", v.LastError)
	}
	if _, ok := v.LastError.(*varal.HTTPError); !ok {
		t.Fatalf("LastError type = %T, want *varal.HTTPError", v.LastError)
	}
}
