// Package storage persists session snapshots to sqlite. It is a best-effort
// audit sink: the core never reads it back at runtime.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/callsync/callsync/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS call_sessions (
    id             TEXT PRIMARY KEY,
    caller_id      TEXT NOT NULL,
    callee_id      TEXT NOT NULL,
    duration_limit INTEGER NOT NULL,
    start_time     TEXT,
    status         TEXT NOT NULL,
    warning_sent   INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL,
    ended_at       TEXT
);
`

type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

func (a *Archive) SessionCreated(s domain.Session) error { return a.upsert(s) }
func (a *Archive) SessionStarted(s domain.Session) error { return a.upsert(s) }
func (a *Archive) SessionWarning(s domain.Session) error { return a.upsert(s) }
func (a *Archive) SessionEnded(s domain.Session) error   { return a.upsert(s) }

func (a *Archive) upsert(s domain.Session) error {
	_, err := a.db.Exec(`
INSERT INTO call_sessions (id, caller_id, callee_id, duration_limit, start_time, status, warning_sent, created_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    start_time   = excluded.start_time,
    status       = excluded.status,
    warning_sent = excluded.warning_sent,
    ended_at     = excluded.ended_at`,
		string(s.ID),
		string(s.CallerID),
		string(s.CalleeID),
		s.DurationLimit,
		nullableTime(s.StartTime),
		string(s.Status),
		boolToInt(s.WarningSent),
		s.CreatedAt.UTC().Format(time.RFC3339),
		nullableTime(s.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", s.ID, err)
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
