package app

import "github.com/callsync/callsync/internal/domain"

// Archiver is the optional durable sink for session snapshots. It is never
// read back at runtime; the engine invokes it fire-and-forget and a failure
// is logged, not surfaced to participants.
type Archiver interface {
	SessionCreated(s domain.Session) error
	SessionStarted(s domain.Session) error
	SessionWarning(s domain.Session) error
	SessionEnded(s domain.Session) error
}

// NopArchiver is used when persistence is not configured.
type NopArchiver struct{}

func (NopArchiver) SessionCreated(domain.Session) error { return nil }
func (NopArchiver) SessionStarted(domain.Session) error { return nil }
func (NopArchiver) SessionWarning(domain.Session) error { return nil }
func (NopArchiver) SessionEnded(domain.Session) error   { return nil }
