package core

import (
	"testing"
	"time"

	"github.com/callsync/callsync/internal/domain"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	call := store.Create("alice", "bob", 30, now)
	snap := call.Snapshot()
	if snap.ID == "" {
		t.Fatal("expected generated id")
	}
	if snap.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", snap.Status)
	}
	if snap.DurationLimit != 30 {
		t.Fatalf("expected duration 30, got %d", snap.DurationLimit)
	}
	if !snap.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, snap.CreatedAt)
	}

	got, ok := store.Get(snap.ID)
	if !ok || got != call {
		t.Fatal("lookup must return the same call")
	}
}

func TestStoreUnknownIDIsDistinguishedMiss(t *testing.T) {
	store := NewStore()
	if _, ok := store.Get("nope"); ok {
		t.Fatal("unknown id must miss")
	}
}

func TestStoreRemovePurges(t *testing.T) {
	store := NewStore()
	call := store.Create("alice", "bob", 5, time.Now())
	id := call.ID()

	store.Remove(id)
	if _, ok := store.Get(id); ok {
		t.Fatal("purged id must not resolve")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestStoreAllSnapshotsEveryCall(t *testing.T) {
	store := NewStore()
	ids := map[domain.SessionID]bool{}
	for range 3 {
		ids[store.Create("a", "b", 1, time.Now()).ID()] = true
	}
	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(all))
	}
	for _, c := range all {
		if !ids[c.ID()] {
			t.Fatalf("unexpected call %s", c.ID())
		}
	}
}
