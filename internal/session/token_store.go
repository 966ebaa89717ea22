// Package session persists the bearer token the gateway uses against the
// healthcare backend.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKey = "clinicflow:backend_token"

// TokenStore reads the backend bearer token from Redis, falling back to a
// statically configured token when Redis is absent or holds none. It
// implements healthcare.TokenSource.
type TokenStore struct {
	redis    *redis.Client
	fallback string
}

// NewTokenStore creates a token store. redisClient may be nil, in which
// case only the fallback token is ever returned.
func NewTokenStore(redisClient *redis.Client, fallback string) *TokenStore {
	return &TokenStore{redis: redisClient, fallback: fallback}
}

// Token returns the current backend bearer token. An empty token with a
// nil error means the backend is called unauthenticated.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	if s.redis == nil {
		return s.fallback, nil
	}
	token, err := s.redis.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return s.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("session: get token: %w", err)
	}
	return token, nil
}

// SetToken stores a new backend token. A zero ttl keeps it until replaced.
func (s *TokenStore) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	if s.redis == nil {
		return fmt.Errorf("session: no redis configured")
	}
	if err := s.redis.Set(ctx, tokenKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("session: set token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token so the fallback applies again.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}
