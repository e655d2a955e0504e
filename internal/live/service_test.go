package live

import (
	"context"
	"errors"
	"testing"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/kvstore"
)

func TestLiveStreamLifecycle(t *testing.T) {
	ctx := context.Background()
	db := database.New(kvstore.NewMemory(), nil, nil)
	svc := NewService(db, nil)

	user, err := db.CreateUser(ctx, database.CreateUserInput{Email: "host@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	stream, err := svc.Start(ctx, database.CreateLiveStreamInput{UserID: user.ID, Title: "launch"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !stream.IsActive || stream.User.ID != user.ID {
		t.Fatalf("unexpected stream: %+v", stream)
	}

	if err := svc.SetViewers(ctx, stream.ID, 42); err != nil {
		t.Fatalf("set viewers: %v", err)
	}

	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].Viewers != 42 {
		t.Fatalf("unexpected active list: %+v", active)
	}

	if err := svc.End(ctx, stream.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	active, err = svc.Active(ctx)
	if err != nil {
		t.Fatalf("active after end: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active streams, got %+v", active)
	}
}

func TestStartRequiresExistingUser(t *testing.T) {
	db := database.New(kvstore.NewMemory(), nil, nil)
	svc := NewService(db, nil)

	if _, err := svc.Start(context.Background(), database.CreateLiveStreamInput{UserID: "ghost"}); !errors.Is(err, database.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestEndUnknownStream(t *testing.T) {
	db := database.New(kvstore.NewMemory(), nil, nil)
	svc := NewService(db, nil)

	if err := svc.End(context.Background(), "ghost"); !errors.Is(err, database.ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound, got %v", err)
	}
}
