// Package redis implements the session cache on Redis for deployments that
// run more than one server process.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/openlore/crosspost/domain"
)

// SessionStore implements cache.SessionStore using Redis.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore creates a SessionStore. prefix namespaces the keys so the
// forum's other Redis usage cannot collide.
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) redisKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *SessionStore) Set(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(session.ID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, bool) {
	raw, err := s.client.Get(ctx, s.redisKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Session cache lookup failed")
		}
		return nil, false
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Warn().Err(err).Msg("Corrupt session cache entry")
		return nil, false
	}
	return &session, true
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.redisKey(id)).Err()
}
