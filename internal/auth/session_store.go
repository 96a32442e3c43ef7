package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session errors
var (
	ErrSessionNotFound = fmt.Errorf("session not found")
)

const sessionPrefix = "session:"

// SessionStore keeps opaque session tokens in Redis, mapping each token
// to a user ID with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create mints a fresh token for the user. Logging in always creates a
// new token; the old one, if any, is left to expire or is deleted by
// the caller.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	key := sessionPrefix + token

	err := s.client.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Get resolves a token to a user ID and slides the expiry forward.
func (s *SessionStore) Get(ctx context.Context, token string) (uint, error) {
	key := sessionPrefix + token

	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("get session: %w", err)
	}

	userID, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse session user id: %w", err)
	}

	// Sliding expiry; best effort
	s.client.Expire(ctx, key, s.ttl)

	return uint(userID), nil
}

// Delete invalidates a token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}
