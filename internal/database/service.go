// Package database implements the persistence adapter: named collections of
// domain records serialized as JSON arrays into a flat key-value store, plus
// a current-user pointer.
//
// Reads fail soft — a missing key or a corrupt blob yields an empty
// collection, never an error. Write failures are logged and swallowed;
// callers cannot distinguish "saved" from "silently dropped". Both behaviors
// are part of the adapter's contract, inherited from the browser-local store
// this layer replaces. Domain failures (duplicate email, missing foreign id)
// are explicit errors.
package database

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nusaiba/backend/internal/kvstore"
)

// Collection keys. Every collection is one JSON array under one key.
const (
	keyUsers       = "nusaiba_users"
	keyCredentials = "nusaiba_credentials"
	keyVideos      = "nusaiba_videos"
	keyComments    = "nusaiba_comments"
	keyLiveStreams = "nusaiba_live_streams"
	keyMessages    = "nusaiba_messages"
	keyChats       = "nusaiba_chats"
	keyMedia       = "nusaiba_media"
	keyBlocked     = "nusaiba_blocked"
	keyCurrentUser = "nusaiba_current_user"
)

// Service is the persistence adapter over a key-value store.
type Service struct {
	kv     kvstore.KV
	hasher Hasher
	logger *slog.Logger

	// NowFunc and IDFunc allow tests to pin time and identifiers.
	NowFunc func() time.Time
	IDFunc  func() string
}

// New constructs the adapter. A nil hasher defaults to DigestHasher and a
// nil logger to slog.Default().
func New(kv kvstore.KV, hasher Hasher, logger *slog.Logger) *Service {
	if kv == nil {
		panic("database: kv store must not be nil")
	}
	if hasher == nil {
		hasher = DigestHasher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, hasher: hasher, logger: logger}
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.IDFunc != nil {
		return s.IDFunc()
	}
	return uuid.NewString()
}

// getCollection parses the stored JSON array under key. Missing keys and
// parse failures yield an empty slice.
func getCollection[T any](ctx context.Context, s *Service, key string) []T {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read collection failed", "key", key, "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("corrupt collection ignored", "key", key, "error", err)
		return nil
	}
	return items
}

// setCollection serializes items and overwrites the whole collection.
// Failures are logged and the write is dropped.
func setCollection[T any](ctx context.Context, s *Service, key string, items []T) {
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("marshal collection failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("save collection failed", "key", key, "error", err)
	}
}

// CurrentUserID returns the signed-in user pointer, if any.
func (s *Service) CurrentUserID(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, keyCurrentUser)
	if err != nil {
		s.logger.Warn("read current user failed", "error", err)
		return "", false
	}
	return id, ok && id != ""
}

// SetCurrentUserID records which user is signed in.
func (s *Service) SetCurrentUserID(ctx context.Context, userID string) {
	if err := s.kv.Set(ctx, keyCurrentUser, userID); err != nil {
		s.logger.Warn("set current user failed", "error", err)
	}
}

// ClearCurrentUserID removes the signed-in user pointer.
func (s *Service) ClearCurrentUserID(ctx context.Context) {
	if err := s.kv.Delete(ctx, keyCurrentUser); err != nil {
		s.logger.Warn("clear current user failed", "error", err)
	}
}
