package core

import (
	"encoding/json"
	"time"

	"github.com/callsync/callsync/internal/domain"
)

// Outbound envelopes pushed to participants. Field names are the client
// contract; do not rename without a client release.

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: "error_event", Message: msg}
}

// SessionState is the reconciliation snapshot sent to a joiner.
type SessionState struct {
	Type          string          `json:"type"`
	Status        domain.Status   `json:"status"`
	StartTime     *time.Time      `json:"startTime"`
	DurationLimit int             `json:"durationLimit"`
	TimeRemaining int             `json:"timeRemaining"`
	Participants  []domain.UserID `json:"participants"`
}

type CallStarted struct {
	Type          string    `json:"type"`
	StartTime     time.Time `json:"startTime"`
	DurationLimit int       `json:"durationLimit"`
	TimeRemaining int       `json:"timeRemaining"`
}

type UserJoined struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type UserLeft struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type TimerTick struct {
	Type          string        `json:"type"`
	TimeRemaining int           `json:"timeRemaining"`
	Status        domain.Status `json:"status"`
}

type TimeWarning struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	TimeRemaining int    `json:"timeRemaining"`
}

type ForceEndCall struct {
	Type    string           `json:"type"`
	Reason  domain.EndReason `json:"reason"`
	Message string           `json:"message"`
}

// SignalRelay is a forwarded negotiation message. Exactly one of Offer,
// Answer or Candidate is set, matching Type; the body is carried verbatim.
type SignalRelay struct {
	Type      string          `json:"type"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	From      domain.UserID   `json:"from"`
}

// NewSignalRelay stamps the sender onto an opaque payload.
func NewSignalRelay(kind SignalKind, payload json.RawMessage, from domain.UserID) SignalRelay {
	ev := SignalRelay{Type: string(kind), From: from}
	switch kind {
	case SignalOffer:
		ev.Offer = payload
	case SignalAnswer:
		ev.Answer = payload
	case SignalCandidate:
		ev.Candidate = payload
	}
	return ev
}
