package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore records issued token ids in Redis so a token can be revoked
// before it expires.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Create registers tokenID for email until ttl elapses.
func (s *SessionStore) Create(ctx context.Context, tokenID, email string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionPrefix+tokenID, email, ttl).Err()
}

// Exists reports whether tokenID is still registered.
func (s *SessionStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete revokes tokenID.
func (s *SessionStore) Delete(ctx context.Context, tokenID string) error {
	return s.rdb.Del(ctx, sessionPrefix+tokenID).Err()
}
