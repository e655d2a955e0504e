package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nusaiba/backend/internal/kvstore"
)

func TestKVSessionStoreSaveFindDelete(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := NewKVSessionStore(kv)

	session := Session{
		RefreshToken: "token-1",
		UserID:       "user-1",
		ExpiresAt:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Sessions must survive a fresh store over the same KV, the way refresh
	// tokens survive process restarts.
	reopened := NewKVSessionStore(kv)
	found, err := reopened.Find(ctx, "token-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.UserID != "user-1" || !found.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", found)
	}

	if err := reopened.Delete(ctx, "token-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reopened.Find(ctx, "token-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := reopened.Delete(ctx, "token-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on double delete, got %v", err)
	}
}
