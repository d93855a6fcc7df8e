package state

import (
	"time"

	"github.com/five82/varal/internal/varal"
)

const (
	// DefaultFeedbackTTL is how long a command notice stays on screen.
	DefaultFeedbackTTL = 3500 * time.Millisecond

	// CommandSentMessage is the success notice after the channel accepts a command.
	CommandSentMessage = "command sent"
)

// PollToken identifies one heartbeat fetch. Only the newest token may apply.
type PollToken uint64

// CommandToken identifies one command submission.
type CommandToken uint64

// PollOutcome reports what ApplyPoll did with a fetch result.
type PollOutcome int

const (
	// PollDiscarded: the fetch was superseded or cancelled; nothing changed.
	PollDiscarded PollOutcome = iota
	// PollFailed: the error flag is set, the previous heartbeat is kept.
	PollFailed
	// PollUpdated: the heartbeat was replaced.
	PollUpdated
	// PollReconciled: the heartbeat was replaced and acknowledged the pending command.
	PollReconciled
)

func (o PollOutcome) String() string {
	switch o {
	case PollFailed:
		return "failed"
	case PollUpdated:
		return "updated"
	case PollReconciled:
		return "reconciled"
	default:
		return "discarded"
	}
}

// PendingCommand is the optimistic overlay of a dispatched command.
type PendingCommand struct {
	Command  varal.Command
	Mode     varal.Mode
	IssuedAt time.Time
}

// FeedbackKind classifies an operator notice.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback is a short-lived notice about the last command outcome.
type Feedback struct {
	ID      uint64
	Kind    FeedbackKind
	Message string
	SetAt   time.Time
}

// Options tune a Session. Zero values use the defaults.
type Options struct {
	StaleAfter  time.Duration
	FeedbackTTL time.Duration
}

// Session holds the synchronization state of one dashboard: the latest
// heartbeat, the poll flags, the pending command and the feedback notice.
// It performs no I/O and is not safe for concurrent use; callers serialize
// transitions through a single event loop.
type Session struct {
	staleAfter  time.Duration
	feedbackTTL time.Duration

	heartbeat    *varal.Heartbeat
	lastReceived time.Time
	pollFailed   bool
	lastError    error
	loading      bool
	pollGen      uint64

	cmdGen      uint64
	inFlight    varal.Command
	pending     *PendingCommand
	awaitingAck bool

	feedback    *Feedback
	feedbackSeq uint64
}

// NewSession returns an empty session.
func NewSession(opts Options) *Session {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = StaleThreshold
	}
	if opts.FeedbackTTL <= 0 {
		opts.FeedbackTTL = DefaultFeedbackTTL
	}
	return &Session{staleAfter: opts.StaleAfter, feedbackTTL: opts.FeedbackTTL}
}

// FeedbackTTL returns the configured feedback lifetime.
func (s *Session) FeedbackTTL() time.Duration {
	return s.feedbackTTL
}

// BeginPoll starts a fetch and supersedes any fetch still outstanding.
// The error flag from an earlier failure stays set until a fetch succeeds,
// so a dead link reads offline between attempts instead of flickering
// through connecting.
func (s *Session) BeginPoll() PollToken {
	s.pollGen++
	s.loading = true
	return PollToken(s.pollGen)
}

// CancelPoll supersedes the outstanding fetch without starting a new one.
func (s *Session) CancelPoll() {
	s.pollGen++
	s.loading = false
}

// Loading reports whether a non-superseded fetch is outstanding.
func (s *Session) Loading() bool {
	return s.loading
}

// ApplyPoll applies a fetch result. Results from superseded tokens and
// cancelled requests are dropped without touching state. A failure sets the
// error flag and keeps the last heartbeat visible.
func (s *Session) ApplyPoll(tok PollToken, hb *varal.Heartbeat, err error) PollOutcome {
	if uint64(tok) != s.pollGen {
		return PollDiscarded
	}
	if err != nil && varal.IsCancelled(err) {
		return PollDiscarded
	}
	s.loading = false
	if err != nil {
		s.pollFailed = true
		s.lastError = err
		return PollFailed
	}

	s.pollFailed = false
	s.lastError = nil
	s.heartbeat = hb.Clone()
	s.lastReceived, _ = hb.ReceivedTime()
	if s.reconcile() {
		return PollReconciled
	}
	return PollUpdated
}

// reconcile drops the pending command once a heartbeat at or after its
// issue instant has been observed.
func (s *Session) reconcile() bool {
	if s.pending == nil || s.lastReceived.IsZero() {
		return false
	}
	if s.lastReceived.Before(s.pending.IssuedAt) {
		return false
	}
	s.pending = nil
	s.awaitingAck = false
	return true
}

// Dispatch applies cmd optimistically. It is a no-op returning false while
// another command is in flight or when cmd is not a known command.
func (s *Session) Dispatch(cmd varal.Command, now time.Time) (CommandToken, bool) {
	mode, ok := cmd.TargetMode()
	if !ok || s.inFlight != "" {
		return 0, false
	}
	s.feedback = nil
	s.inFlight = cmd
	s.pending = &PendingCommand{Command: cmd, Mode: mode, IssuedAt: now}
	s.awaitingAck = true
	s.cmdGen++
	return CommandToken(s.cmdGen), true
}

// ApplyCommand records the channel outcome of a dispatched command. On
// failure the pending command is rolled back in the same step. The returned
// bool is false when tok does not match the command in flight.
func (s *Session) ApplyCommand(tok CommandToken, err error, now time.Time) (Feedback, bool) {
	if uint64(tok) != s.cmdGen || s.inFlight == "" {
		return Feedback{}, false
	}
	s.inFlight = ""
	if err != nil {
		s.pending = nil
		s.awaitingAck = false
		return s.SetFeedback(FeedbackError, varal.CommandErrorMessage(err), now), true
	}
	return s.SetFeedback(FeedbackSuccess, CommandSentMessage, now), true
}

// SetFeedback replaces the current notice.
func (s *Session) SetFeedback(kind FeedbackKind, message string, now time.Time) Feedback {
	s.feedbackSeq++
	fb := Feedback{ID: s.feedbackSeq, Kind: kind, Message: message, SetAt: now}
	s.feedback = &fb
	return fb
}

// ExpireFeedback clears the notice only if it is still the one identified by id.
func (s *Session) ExpireFeedback(id uint64) bool {
	if s.feedback == nil || s.feedback.ID != id {
		return false
	}
	s.feedback = nil
	return true
}

// DisplayedMode is the pending target while a command awaits its heartbeat,
// otherwise the mode the last heartbeat reported.
func (s *Session) DisplayedMode() (varal.Mode, bool) {
	if s.pending != nil {
		return s.pending.Mode, true
	}
	return s.heartbeat.ReportedMode()
}

// Connection classifies the session at now.
func (s *Session) Connection(now time.Time) ConnectionState {
	return classify(s.lastReceived, now, s.staleAfter, s.pollFailed, s.loading)
}

// View returns an immutable copy of everything a renderer needs.
func (s *Session) View(now time.Time) View {
	v := View{
		Heartbeat:    s.heartbeat.Clone(),
		LastReceived: s.lastReceived,
		PollFailed:   s.pollFailed,
		LastError:    s.lastError,
		Loading:      s.loading,
		InFlight:     s.inFlight,
		AwaitingAck:  s.awaitingAck,
		StaleAfter:   s.staleAfter,
		UpdatedAt:    now,
	}
	v.Mode, v.HasMode = s.DisplayedMode()
	if s.pending != nil {
		p := *s.pending
		v.Pending = &p
	}
	if s.feedback != nil && now.Sub(s.feedback.SetAt) < s.feedbackTTL {
		fb := *s.feedback
		v.Feedback = &fb
	}
	return v
}
