// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const (
	DefaultDurationLimit = 30  // minutes
	MaxDurationLimit     = 240 // minutes
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

type (
	SessionID string
	UserID    string
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusWarning Status = "warning"
	StatusEnded   Status = "ended"
	StatusExpired Status = "expired"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusExpired
}

// Counting reports whether the countdown is running for this status.
func (s Status) Counting() bool {
	return s == StatusActive || s == StatusWarning
}

// Session is one time-boxed two-party call.
type Session struct {
	ID            SessionID  `json:"id"`
	CallerID      UserID     `json:"caller_id"`
	CalleeID      UserID     `json:"callee_id"`
	DurationLimit int        `json:"duration_limit"` // minutes
	StartTime     *time.Time `json:"start_time"`
	Status        Status     `json:"status"`
	WarningSent   bool       `json:"warning_sent"`
	CreatedAt     time.Time  `json:"created_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// TimeRemaining derives the remaining seconds from StartTime and now.
// It is never kept as a decrementing counter, so a missed tick or a late
// observer always converges to the same value.
func (s *Session) TimeRemaining(now time.Time) int {
	total := s.DurationLimit * 60
	if s.StartTime == nil {
		return total
	}
	elapsed := int(now.Sub(*s.StartTime) / time.Second)
	remaining := total - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
