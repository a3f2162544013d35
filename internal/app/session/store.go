/*
Package session keeps the registry of live sign-in sessions in Redis.

A session token is a signed JWT whose id claim names an entry here. Logout
deletes the entry, which revokes the token before it expires.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trailmeet/internal/pkg/randx"
)

const keyPrefix = "session:"

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store is a Redis-backed session registry.
type Store struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	newID func() (string, error)
}

// NewStore returns a Store whose sessions live for ttl.
func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, newID: randx.SessionID}
}

// TTL returns the lifetime of new sessions.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// Create registers a session for userID and returns its id.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	if err := s.rdb.Set(ctx, key(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// Active reports whether sessionID is registered.
func (s *Store) Active(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n == 1, nil
}

// UserID returns the user owning sessionID.
func (s *Store) UserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.rdb.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return userID, nil
}

// Revoke deletes sessionID. Revoking an unknown session is not an error.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
