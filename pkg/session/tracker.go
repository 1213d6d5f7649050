package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveSession is returned when elapsed time or a stop is requested
// while no session is being tracked.
var ErrNoActiveSession = errors.New("no active session")

// Session is one contiguous start/stop interval of tracked coding time.
type Session struct {
	ID    string
	Start time.Time
	End   time.Time // zero while the session is active
}

// Duration returns End - Start, or zero for a session that has not ended.
func (s Session) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Tracker holds at most one active session. It is not safe for concurrent use;
// the command loop owns it.
type Tracker struct {
	now    func() time.Time
	active *Session // nil means idle
}

// NewTracker returns an idle tracker. A nil clock defaults to time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Active reports whether a session is in progress.
func (t *Tracker) Active() bool {
	return t.active != nil
}

// Start begins a new session at the current time. A session that was already
// active is replaced and returned so the caller can tell the user about it.
func (t *Tracker) Start() (Session, *Session) {
	previous := t.active
	t.active = &Session{
		ID:    uuid.NewString(),
		Start: t.now(),
	}
	return *t.active, previous
}

// Elapsed returns the whole minutes since the active session started.
func (t *Tracker) Elapsed() (int, error) {
	if t.active == nil {
		return 0, ErrNoActiveSession
	}
	return int(t.now().Sub(t.active.Start) / time.Minute), nil
}

// Stop ends the active session and returns it. The tracker is idle afterwards.
func (t *Tracker) Stop() (Session, error) {
	if t.active == nil {
		return Session{}, ErrNoActiveSession
	}
	s := *t.active
	s.End = t.now()
	t.active = nil
	return s, nil
}
