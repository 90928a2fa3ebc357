package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/presencelab/beacon-bridge/internal/domain/entity"
	"github.com/presencelab/beacon-bridge/internal/domain/repository"
)

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewStore(db), func() { db.Close() }
}

func TestStore_SetAndGet(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	rec := entity.BeaconRecord{
		On:        true,
		ExpiresAt: 1700000000000,
		LastMessage: entity.LastMessage{
			From:       "@alice",
			Body:       "/on 5m",
			ReceivedAt: 1699999970000,
		},
	}

	if err := store.Set(ctx, repository.PathBeacon, rec); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	var got entity.BeaconRecord
	if err := store.Get(ctx, repository.PathBeacon, &got); err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got != rec {
		t.Errorf("expected %+v, got %+v", rec, got)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Set(ctx, repository.PathBeacon, entity.BeaconRecord{On: true}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := store.Set(ctx, repository.PathBeacon, entity.BeaconRecord{On: false}); err != nil {
		t.Fatalf("second set: %v", err)
	}

	var got entity.BeaconRecord
	if err := store.Get(ctx, repository.PathBeacon, &got); err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got.On {
		t.Error("expected last write to win")
	}
}

func TestStore_PushAppends(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	k1, err := store.Push(ctx, repository.PathLogs, entity.LogEntry{From: "@a", Body: "one"})
	if err != nil {
		t.Fatalf("push 1: %v", err)
	}
	k2, err := store.Push(ctx, repository.PathLogs, entity.LogEntry{From: "@a", Body: "two"})
	if err != nil {
		t.Fatalf("push 2: %v", err)
	}
	if k1 == k2 {
		t.Errorf("expected distinct push keys, both were %s", k1)
	}

	n, err := store.CountEntries(ctx, repository.PathLogs)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	var rec entity.BeaconRecord
	err := store.Get(context.Background(), "/missing", &rec)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PathsAreIndependent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Set(ctx, repository.PathDebugLastHit, entity.LastHit{Route: "/webhook/telegram"}); err != nil {
		t.Fatalf("set hit: %v", err)
	}
	if err := store.Set(ctx, repository.PathDebugLastError, entity.LastError{Reason: "empty body"}); err != nil {
		t.Fatalf("set error: %v", err)
	}

	var hit entity.LastHit
	if err := store.Get(ctx, repository.PathDebugLastHit, &hit); err != nil {
		t.Fatalf("get hit: %v", err)
	}
	if hit.Route != "/webhook/telegram" {
		t.Errorf("unexpected route %s", hit.Route)
	}

	var lastErr entity.LastError
	if err := store.Get(ctx, repository.PathDebugLastError, &lastErr); err != nil {
		t.Fatalf("get error: %v", err)
	}
	if lastErr.Reason != "empty body" {
		t.Errorf("unexpected reason %s", lastErr.Reason)
	}
}
