package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nusaiba/backend/internal/kvstore"
)

const sessionsKey = "nusaiba_sessions"

// KVSessionStore persists sessions into the same key-value store the rest of
// the platform uses, as one JSON object keyed by refresh token. The whole
// blob is rewritten per mutation, matching the adapter's collection model.
type KVSessionStore struct {
	mu sync.Mutex
	kv kvstore.KV
}

// NewKVSessionStore constructs a session store over the provided KV.
func NewKVSessionStore(kv kvstore.KV) *KVSessionStore {
	return &KVSessionStore{kv: kv}
}

// Save stores or updates a session record.
func (s *KVSessionStore) Save(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}
	sessions[session.RefreshToken] = session
	return s.flush(ctx, sessions)
}

// Find loads a session by its refresh token.
func (s *KVSessionStore) Find(ctx context.Context, refreshToken string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return Session{}, err
	}
	session, ok := sessions[refreshToken]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session by its refresh token.
func (s *KVSessionStore) Delete(ctx context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := sessions[refreshToken]; !ok {
		return ErrSessionNotFound
	}
	delete(sessions, refreshToken)
	return s.flush(ctx, sessions)
}

func (s *KVSessionStore) load(ctx context.Context) (map[string]Session, error) {
	raw, ok, err := s.kv.Get(ctx, sessionsKey)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	sessions := make(map[string]Session)
	if !ok || raw == "" {
		return sessions, nil
	}
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions: %w", err)
	}
	return sessions, nil
}

func (s *KVSessionStore) flush(ctx context.Context, sessions map[string]Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := s.kv.Set(ctx, sessionsKey, string(data)); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

var _ SessionStore = (*InMemorySessionStore)(nil)
var _ SessionStore = (*KVSessionStore)(nil)
