package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/kvstore"
	"github.com/nusaiba/backend/internal/models"
)

func newTestStore(t *testing.T) (*Service, *database.Service) {
	t.Helper()
	db := database.New(kvstore.NewMemory(), nil, nil)
	return NewService(db, nil), db
}

func TestLoginTransitions(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestStore(t)

	if _, err := db.CreateUser(ctx, database.CreateUserInput{Email: "alice@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	var seen []Status
	unsubscribe := svc.Subscribe(func(state State) {
		seen = append(seen, state.Status)
	})
	defer unsubscribe()

	if err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, database.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	state := svc.State()
	if state.Status != StatusAnonymous || state.Err != "Invalid credentials" {
		t.Fatalf("unexpected state after bad login: %+v", state)
	}
	if _, ok := db.CurrentUserID(ctx); ok {
		t.Fatal("failed login must not set the current-user pointer")
	}

	if err := svc.Login(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	state = svc.State()
	if state.Status != StatusAuthenticated || state.User == nil || state.Err != "" {
		t.Fatalf("unexpected state after login: %+v", state)
	}
	if id, ok := db.CurrentUserID(ctx); !ok || id != state.User.ID {
		t.Fatalf("current-user pointer not set: %q ok=%v", id, ok)
	}

	want := []Status{StatusAuthenticating, StatusAnonymous, StatusAuthenticating, StatusAuthenticated}
	if len(seen) != len(want) {
		t.Fatalf("unexpected notifications: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d: got %v want %v", i, seen[i], want[i])
		}
	}
}

func TestRegisterAutoLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestStore(t)

	if err := svc.Register(ctx, database.CreateUserInput{Email: "bob@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	state := svc.State()
	if state.Status != StatusAuthenticated || state.User == nil {
		t.Fatalf("expected auto-login after register: %+v", state)
	}

	// Duplicate registration surfaces the adapter's message.
	if err := svc.Register(ctx, database.CreateUserInput{Email: "bob@example.com", Password: "pw"}); !errors.Is(err, database.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if got := svc.State().Err; got != database.ErrUserExists.Error() {
		t.Fatalf("expected adapter message in state, got %q", got)
	}
}

func TestLogoutClearsPointer(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestStore(t)

	if err := svc.Register(ctx, database.CreateUserInput{Email: "bob@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.Logout(ctx)
	if svc.State().Status != StatusAnonymous {
		t.Fatalf("expected anonymous after logout, got %v", svc.State().Status)
	}
	if _, ok := db.CurrentUserID(ctx); ok {
		t.Fatal("logout must clear the current-user pointer")
	}
}

func TestResumeRestoresSession(t *testing.T) {
	ctx := context.Background()
	db := database.New(kvstore.NewMemory(), nil, nil)

	user, err := db.CreateUser(ctx, database.CreateUserInput{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	db.SetCurrentUserID(ctx, user.ID)

	svc := NewService(db, nil)
	if !svc.Resume(ctx) {
		t.Fatal("expected resume to restore the session")
	}
	if got, ok := svc.CurrentUser(); !ok || got.ID != user.ID {
		t.Fatalf("unexpected resumed user: %+v ok=%v", got, ok)
	}

	// A dangling pointer is cleared instead of resumed.
	db.SetCurrentUserID(ctx, "ghost")
	fresh := NewService(db, nil)
	if fresh.Resume(ctx) {
		t.Fatal("expected resume to fail for a missing user")
	}
	if _, ok := db.CurrentUserID(ctx); ok {
		t.Fatal("dangling pointer should have been cleared")
	}
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestStore(t)

	if err := svc.Register(ctx, database.CreateUserInput{Email: "bob@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.UpdateUser(ctx, func(u *models.User) {
		u.Name = "Bob B."
		u.Bio = "hello"
	}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	current, ok := svc.CurrentUser()
	if !ok || current.Name != "Bob B." || current.Bio != "hello" {
		t.Fatalf("local state not updated: %+v", current)
	}

	persisted, err := db.GetUserByID(ctx, current.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if persisted.Name != "Bob B." || persisted.Bio != "hello" {
		t.Fatalf("edit not persisted: %+v", persisted)
	}
}

func TestUpdateUserRequiresSession(t *testing.T) {
	svc, _ := newTestStore(t)
	err := svc.UpdateUser(context.Background(), func(u *models.User) { u.Bio = "x" })
	if !errors.Is(err, database.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
