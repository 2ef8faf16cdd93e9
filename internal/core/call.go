package core

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/domain"
)

// WarningMessage is pushed once per session when the countdown crosses the
// warning threshold.
const WarningMessage = "⚠️ Call ending in 2 minutes!"

// Call is the serialization unit for one session: every read-modify-write of
// the record and its connection set goes through its mutex, so concurrent
// joins, leaves, ticks and end requests on the same id cannot interleave.
// Different calls share nothing and proceed fully in parallel.
// It never closes adapter-owned connections.
type Call struct {
	mu    sync.Mutex
	sess  domain.Session
	conns map[domain.UserID]SignalConnection
}

func newCall(sess domain.Session) *Call {
	return &Call{
		sess:  sess,
		conns: make(map[domain.UserID]SignalConnection),
	}
}

// ID is immutable and safe without the lock.
func (c *Call) ID() domain.SessionID { return c.sess.ID }

func (c *Call) Snapshot() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Call) ParticipantCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

type JoinOutcome struct {
	Started  bool
	Snapshot domain.Session
}

// AddParticipant registers a connection under uid, overwriting any prior one
// (reconnect semantics, last connection wins). Peers are notified, the joiner
// gets a reconciliation snapshot, and the arrival of the second distinct
// participant starts the countdown exactly once. Joining a terminal session
// fails with ErrSessionExpired.
func (c *Call) AddParticipant(uid domain.UserID, conn SignalConnection, now time.Time) (JoinOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status.Terminal() {
		return JoinOutcome{Snapshot: c.sess}, domain.ErrSessionExpired
	}

	c.conns[uid] = conn
	log.Info().Str("module", "core.call").Str("session", string(c.sess.ID)).
		Str("user", string(uid)).Int("participants", len(c.conns)).Msg("participant joined")

	ev := UserJoined{Type: "user_joined", UserID: uid}
	for id, peer := range c.conns {
		if id != uid {
			c.sendLocked(peer, ev)
		}
	}

	c.sendLocked(conn, c.stateLocked(now))

	out := JoinOutcome{}
	if len(c.conns) >= 2 && c.sess.StartTime == nil {
		start := now
		c.sess.StartTime = &start
		c.sess.Status = domain.StatusActive
		c.broadcastLocked(CallStarted{
			Type:          "call_started",
			StartTime:     start,
			DurationLimit: c.sess.DurationLimit,
			TimeRemaining: c.sess.DurationLimit * 60,
		})
		out.Started = true
		log.Info().Str("module", "core.call").Str("session", string(c.sess.ID)).Msg("call started")
	}
	out.Snapshot = c.sess
	return out, nil
}

type LeaveOutcome struct {
	Ended    bool
	Snapshot domain.Session
}

// RemoveParticipant deregisters uid and notifies the remaining participants.
// When the last participant leaves a counting session the call terminates
// with reason all_left.
func (c *Call) RemoveParticipant(uid domain.UserID, now time.Time) LeaveOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conns[uid]; !ok {
		return LeaveOutcome{Snapshot: c.sess}
	}
	delete(c.conns, uid)
	log.Info().Str("module", "core.call").Str("session", string(c.sess.ID)).
		Str("user", string(uid)).Int("participants", len(c.conns)).Msg("participant left")

	c.broadcastLocked(UserLeft{Type: "user_left", UserID: uid})

	out := LeaveOutcome{}
	if len(c.conns) == 0 && c.sess.Status.Counting() {
		c.terminateLocked(domain.ReasonAllLeft, now)
		out.Ended = true
	}
	out.Snapshot = c.sess
	return out
}

// Relay forwards an opaque negotiation payload to every other registered
// connection, stamped with the sender. No peer connected means a silent drop;
// the relay on a terminal session is rejected like a join.
func (c *Call) Relay(from domain.UserID, kind SignalKind, payload json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status.Terminal() {
		return domain.ErrSessionExpired
	}

	ev := NewSignalRelay(kind, payload, from)
	for id, peer := range c.conns {
		if id != from {
			c.sendLocked(peer, ev)
		}
	}
	return nil
}

type EndOutcome struct {
	Applied  bool
	Snapshot domain.Session
}

// End applies a terminal transition at most once. Ending an already-terminal
// call is a safe no-op.
func (c *Call) End(reason domain.EndReason, now time.Time) EndOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status.Terminal() {
		return EndOutcome{Snapshot: c.sess}
	}
	c.terminateLocked(reason, now)
	return EndOutcome{Applied: true, Snapshot: c.sess}
}

type TickOutcome struct {
	Warned   bool
	Expired  bool
	Snapshot domain.Session
}

// Tick recomputes remaining time from the stored start instant, broadcasts it
// and applies the warning and expiry transitions. warnAt is the warning
// threshold in seconds.
func (c *Call) Tick(now time.Time, warnAt int) TickOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sess.Status.Counting() || c.sess.StartTime == nil {
		return TickOutcome{Snapshot: c.sess}
	}

	remaining := c.sess.TimeRemaining(now)
	c.broadcastLocked(TimerTick{Type: "timer_tick", TimeRemaining: remaining, Status: c.sess.Status})

	out := TickOutcome{}
	if remaining <= warnAt && !c.sess.WarningSent {
		c.sess.WarningSent = true
		c.sess.Status = domain.StatusWarning
		c.broadcastLocked(TimeWarning{Type: "time_warning", Message: WarningMessage, TimeRemaining: remaining})
		out.Warned = true
		log.Info().Str("module", "core.call").Str("session", string(c.sess.ID)).
			Int("remaining", remaining).Msg("warning sent")
	}
	if remaining <= 0 {
		c.terminateLocked(domain.ReasonTimeout, now)
		out.Expired = true
	}
	out.Snapshot = c.sess
	return out
}

func (c *Call) stateLocked(now time.Time) SessionState {
	participants := make([]domain.UserID, 0, len(c.conns))
	for id := range c.conns {
		participants = append(participants, id)
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i] < participants[j] })
	return SessionState{
		Type:          "session_state",
		Status:        c.sess.Status,
		StartTime:     c.sess.StartTime,
		DurationLimit: c.sess.DurationLimit,
		TimeRemaining: c.sess.TimeRemaining(now),
		Participants:  participants,
	}
}

// terminateLocked is the single place a call reaches a terminal state. The
// broadcast belongs to the same logical step as the status change: both
// happen under the lock, so a racing end condition can never double-fire.
func (c *Call) terminateLocked(reason domain.EndReason, now time.Time) {
	c.sess.Status = reason.FinalStatus()
	ended := now
	c.sess.EndedAt = &ended
	c.broadcastLocked(ForceEndCall{Type: "force_end_call", Reason: reason, Message: reason.Message()})
	log.Info().Str("module", "core.call").Str("session", string(c.sess.ID)).
		Str("reason", string(reason)).Msg("call terminated")
}

// broadcastLocked delivers best-effort to every connection independently; a
// slow or dead peer must not block or fail delivery to another.
func (c *Call) broadcastLocked(v any) {
	for _, conn := range c.conns {
		c.sendLocked(conn, v)
	}
}

func (c *Call) sendLocked(conn SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.call").Msg("event marshal")
		return
	}
	if err := conn.TrySend(Frame(b)); err != nil {
		log.Debug().Err(err).Str("module", "core.call").
			Str("session", string(c.sess.ID)).Msg("send dropped")
	}
}
