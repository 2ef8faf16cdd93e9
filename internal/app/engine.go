package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/core"
	"github.com/callsync/callsync/internal/domain"
)

// Engine ties the store, the lifecycle transitions and the archiver together.
// It resolves session lookups, maps misses to the error taxonomy, and runs
// the side effects that cross the per-call boundary (archiving, purge
// scheduling). All per-session state changes are delegated to the call's own
// serialization unit.
type Engine struct {
	store    *core.Store
	archiver Archiver

	warnAt     int // seconds
	purgeGrace time.Duration

	now      func() time.Time
	schedule func(d time.Duration, fn func())
}

func NewEngine(store *core.Store, archiver Archiver, warnAt, purgeGrace time.Duration) *Engine {
	return &Engine{
		store:      store,
		archiver:   archiver,
		warnAt:     int(warnAt / time.Second),
		purgeGrace: purgeGrace,
		now:        time.Now,
		schedule:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// CreateSession registers a new pending session. A non-positive duration
// falls back to the default limit.
func (e *Engine) CreateSession(caller, callee domain.UserID, durationLimit int) domain.Session {
	if durationLimit <= 0 {
		durationLimit = domain.DefaultDurationLimit
	}
	if durationLimit > domain.MaxDurationLimit {
		durationLimit = domain.MaxDurationLimit
	}
	call := e.store.Create(caller, callee, durationLimit, e.now())
	snap := call.Snapshot()
	e.archive("created", e.archiver.SessionCreated, snap)
	return snap
}

func (e *Engine) GetSession(id domain.SessionID) (domain.Session, bool) {
	call, ok := e.store.Get(id)
	if !ok {
		return domain.Session{}, false
	}
	return call.Snapshot(), true
}

// TimeRemaining reports the remaining seconds for a snapshot as of now.
func (e *Engine) TimeRemaining(s domain.Session) int {
	return s.TimeRemaining(e.now())
}

func (e *Engine) ActiveSessions() int { return e.store.Len() }

// Join registers a connection under uid. The second distinct participant
// starts the countdown.
func (e *Engine) Join(id domain.SessionID, uid domain.UserID, conn core.SignalConnection) error {
	call, ok := e.store.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	out, err := call.AddParticipant(uid, conn, e.now())
	if err != nil {
		return err
	}
	if out.Started {
		e.archive("started", e.archiver.SessionStarted, out.Snapshot)
	}
	return nil
}

// Leave deregisters uid; the last participant leaving a counting session
// ends it with reason all_left. Leaving an unknown session is a no-op.
func (e *Engine) Leave(id domain.SessionID, uid domain.UserID) {
	call, ok := e.store.Get(id)
	if !ok {
		return
	}
	out := call.RemoveParticipant(uid, e.now())
	if out.Ended {
		e.finish(out.Snapshot)
	}
}

// Relay forwards an opaque negotiation payload to the peer(s) of from.
func (e *Engine) Relay(id domain.SessionID, from domain.UserID, kind core.SignalKind, payload json.RawMessage) error {
	call, ok := e.store.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return call.Relay(from, kind, payload)
}

// End applies a manual or all_left termination. Unknown ids and
// already-terminal sessions are safe no-ops.
func (e *Engine) End(id domain.SessionID, reason domain.EndReason) {
	call, ok := e.store.Get(id)
	if !ok {
		return
	}
	out := call.End(reason, e.now())
	if out.Applied {
		e.finish(out.Snapshot)
	}
}

// Sweep is one timer-authority pass: every counting session gets a tick
// broadcast and its warning/expiry transitions evaluated. Each call applies
// the check-and-transition under its own lock.
func (e *Engine) Sweep() {
	now := e.now()
	for _, call := range e.store.All() {
		out := call.Tick(now, e.warnAt)
		if out.Warned {
			e.archive("warning", e.archiver.SessionWarning, out.Snapshot)
		}
		if out.Expired {
			e.finish(out.Snapshot)
		}
	}
}

// finish runs the post-termination side effects: archive the final snapshot
// and schedule the purge. The grace window lets in-flight frames (the
// termination notice included) drain before the id becomes invalid.
func (e *Engine) finish(snap domain.Session) {
	e.archive("ended", e.archiver.SessionEnded, snap)
	id := snap.ID
	e.schedule(e.purgeGrace, func() { e.store.Remove(id) })
}

// archive dispatches a snapshot write on its own goroutine. Persistence must
// never delay or fail a broadcast or a transition.
func (e *Engine) archive(what string, write func(domain.Session) error, snap domain.Session) {
	go func() {
		if err := write(snap); err != nil {
			log.Warn().Err(err).Str("module", "app.engine").
				Str("session", string(snap.ID)).Str("event", what).Msg("archive failed")
		}
	}()
}
