package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/callsync/callsync/internal/domain"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "callsync.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleSession() domain.Session {
	return domain.Session{
		ID:            "sess-1",
		CallerID:      "alice",
		CalleeID:      "bob",
		DurationLimit: 30,
		Status:        domain.StatusPending,
		CreatedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestArchiveInsertAndUpsert(t *testing.T) {
	a := testArchive(t)
	s := sampleSession()

	if err := a.SessionCreated(s); err != nil {
		t.Fatalf("created: %v", err)
	}

	start := s.CreatedAt.Add(time.Minute)
	s.StartTime = &start
	s.Status = domain.StatusActive
	if err := a.SessionStarted(s); err != nil {
		t.Fatalf("started: %v", err)
	}

	ended := start.Add(30 * time.Minute)
	s.EndedAt = &ended
	s.Status = domain.StatusExpired
	s.WarningSent = true
	if err := a.SessionEnded(s); err != nil {
		t.Fatalf("ended: %v", err)
	}

	var count int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM call_sessions`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("upserts must keep one row per session, got %d", count)
	}

	var status, startTime, endedAt string
	var warningSent int
	err := a.db.QueryRow(
		`SELECT status, start_time, ended_at, warning_sent FROM call_sessions WHERE id = ?`,
		string(s.ID),
	).Scan(&status, &startTime, &endedAt, &warningSent)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if status != "expired" {
		t.Fatalf("expected expired, got %s", status)
	}
	if startTime != "2026-03-10T12:01:00Z" {
		t.Fatalf("unexpected start_time %s", startTime)
	}
	if endedAt != "2026-03-10T12:31:00Z" {
		t.Fatalf("unexpected ended_at %s", endedAt)
	}
	if warningSent != 1 {
		t.Fatalf("expected warning_sent 1, got %d", warningSent)
	}
}

func TestArchiveNullTimes(t *testing.T) {
	a := testArchive(t)
	if err := a.SessionCreated(sampleSession()); err != nil {
		t.Fatalf("created: %v", err)
	}

	var startTime, endedAt any
	err := a.db.QueryRow(`SELECT start_time, ended_at FROM call_sessions WHERE id = ?`, "sess-1").
		Scan(&startTime, &endedAt)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if startTime != nil || endedAt != nil {
		t.Fatalf("pending session must store NULL instants, got %v / %v", startTime, endedAt)
	}
}

func TestArchiveReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "callsync.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.SessionCreated(sampleSession()); err != nil {
		t.Fatalf("created: %v", err)
	}
	a.Close()

	b, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	var count int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM call_sessions`).Scan(&count); err != nil {
		t.Fatalf("count after reopen: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected persisted row, got %d", count)
	}
}
