package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/domain"
)

// Store is the authoritative id → Call mapping. It only guards the map;
// per-session state lives behind each Call's own lock, so operations on
// different sessions never serialize behind each other.
type Store struct {
	mu    sync.RWMutex
	calls map[domain.SessionID]*Call
}

func NewStore() *Store {
	return &Store{calls: make(map[domain.SessionID]*Call)}
}

func (s *Store) Create(caller, callee domain.UserID, durationLimit int, now time.Time) *Call {
	sess := domain.Session{
		ID:            domain.SessionID(uuid.NewString()),
		CallerID:      caller,
		CalleeID:      callee,
		DurationLimit: durationLimit,
		Status:        domain.StatusPending,
		CreatedAt:     now,
	}
	call := newCall(sess)

	s.mu.Lock()
	s.calls[sess.ID] = call
	s.mu.Unlock()

	log.Info().Str("module", "core.store").Str("session", string(sess.ID)).
		Int("duration_limit", durationLimit).Msg("session created")
	return call
}

// Get yields a distinguished miss for unknown or purged ids, never a zero
// value.
func (s *Store) Get(id domain.SessionID) (*Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	call, ok := s.calls[id]
	return call, ok
}

func (s *Store) Remove(id domain.SessionID) {
	s.mu.Lock()
	delete(s.calls, id)
	s.mu.Unlock()
	log.Info().Str("module", "core.store").Str("session", string(id)).Msg("session purged")
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// All snapshots the current call set for the timer sweep. Mutation still goes
// through each call's own lock.
func (s *Store) All() []*Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Call, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c)
	}
	return out
}
