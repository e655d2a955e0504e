// Package auth holds the client-facing authentication state machine and the
// session token manager backing the HTTP API.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/models"
)

// Status is the authentication phase of the local session.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is an immutable snapshot of the auth store. Err holds the short
// user-facing message for the last failed action, empty otherwise.
type State struct {
	Status Status
	User   *models.User
	Err    string
}

// Service is the authentication store: it owns the signed-in user, drives
// the anonymous/authenticating/authenticated transitions, and notifies
// subscribers on every change. Construct one per client session; there are
// no package-level singletons.
type Service struct {
	db     *database.Service
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewService constructs an anonymous auth store over the adapter.
func NewService(db *database.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		logger: logger,
		subs:   make(map[int]func(State)),
	}
}

// State returns the current snapshot. The embedded user is a copy.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// CurrentUser returns the signed-in user, if any.
func (s *Service) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusAuthenticated || s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

// Subscribe registers fn for state-change notifications and returns an
// unsubscribe func.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Resume restores the session recorded by the current-user pointer, if the
// referenced user still exists. It reports whether a session was restored.
func (s *Service) Resume(ctx context.Context) bool {
	id, ok := s.db.CurrentUserID(ctx)
	if !ok {
		return false
	}
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		s.db.ClearCurrentUserID(ctx)
		return false
	}
	s.setState(State{Status: StatusAuthenticated, User: &user})
	return true
}

// Login authenticates with an email and password. Both unknown email and
// wrong password surface the same generic message.
func (s *Service) Login(ctx context.Context, email, password string) error {
	s.setState(State{Status: StatusAuthenticating})

	user, err := s.db.AuthenticateUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			s.setState(State{Status: StatusAnonymous, Err: "Invalid credentials"})
		} else {
			s.logger.Error("login failed", "error", err)
			s.setState(State{Status: StatusAnonymous, Err: "Login failed"})
		}
		return err
	}

	s.db.SetCurrentUserID(ctx, user.ID)
	s.setState(State{Status: StatusAuthenticated, User: &user})
	return nil
}

// Register creates an account and signs it in immediately; there is no
// separate verification step.
func (s *Service) Register(ctx context.Context, input database.CreateUserInput) error {
	s.setState(State{Status: StatusAuthenticating})

	user, err := s.db.CreateUser(ctx, input)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			s.setState(State{Status: StatusAnonymous, Err: err.Error()})
		} else {
			s.logger.Error("registration failed", "error", err)
			s.setState(State{Status: StatusAnonymous, Err: "Registration failed"})
		}
		return err
	}

	s.db.SetCurrentUserID(ctx, user.ID)
	s.setState(State{Status: StatusAuthenticated, User: &user})
	return nil
}

// LoginWithUser signs in a user resolved out-of-band, e.g. by a social
// provider through SocialSignInOrRegister.
func (s *Service) LoginWithUser(ctx context.Context, user models.User) {
	s.db.SetCurrentUserID(ctx, user.ID)
	s.setState(State{Status: StatusAuthenticated, User: &user})
}

// Logout clears the current-user pointer and returns to anonymous.
func (s *Service) Logout(ctx context.Context) {
	s.db.ClearCurrentUserID(ctx)
	s.setState(State{Status: StatusAnonymous})
}

// UpdateUser applies a partial profile edit to the signed-in user and
// persists it. The local state is updated first and kept even when the
// persist fails; the failure only surfaces through the state's Err field.
func (s *Service) UpdateUser(ctx context.Context, apply func(*models.User)) error {
	s.mu.Lock()
	if s.state.Status != StatusAuthenticated || s.state.User == nil {
		s.mu.Unlock()
		return database.ErrUserNotFound
	}
	user := *s.state.User
	s.mu.Unlock()

	apply(&user)

	persisted, err := s.db.UpdateUser(ctx, user)
	if err != nil {
		s.logger.Warn("profile update not persisted", "userId", user.ID, "error", err)
		s.setState(State{Status: StatusAuthenticated, User: &user, Err: "Profile update failed"})
		return err
	}

	s.setState(State{Status: StatusAuthenticated, User: &persisted})
	return nil
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := cloneState(state)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func cloneState(state State) State {
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}
