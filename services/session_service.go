package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openlore/crosspost/cache"
	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
)

// PasswordHasher hashes and verifies local account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// SessionService manages the local login sessions that gate the
// token-issuance endpoint and the resolver entry points. Sessions are local
// to one site and never travel across the protocol.
type SessionService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	store    cache.SessionStore
	hasher   PasswordHasher
	ttl      time.Duration
}

// NewSessionService creates a SessionService.
func NewSessionService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	store cache.SessionStore,
	hasher PasswordHasher,
	ttl time.Duration,
) *SessionService {
	return &SessionService{users: users, sessions: sessions, store: store, hasher: hasher, ttl: ttl}
}

// Login verifies credentials and creates a session.
func (s *SessionService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*domain.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewUnauthorized()
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, errors.NewUnauthorized()
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.store.Set(ctx, session); err != nil {
		log.Warn().Err(err).Msg("Failed to cache session")
	}
	return session, nil
}

// Validate resolves a session id to its user, going through the cache with
// repository fallback. Expired or unknown sessions fail with the
// authorization error.
func (s *SessionService) Validate(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, errors.NewUnauthorized()
	}

	session, ok := s.store.Get(ctx, sessionID)
	if !ok {
		var err error
		session, err = s.sessions.GetSessionByID(ctx, sessionID)
		if err != nil {
			return nil, errors.NewUnauthorized()
		}
		if err := s.store.Set(ctx, session); err != nil {
			log.Warn().Err(err).Msg("Failed to cache session")
		}
	}
	if session.Expired(time.Now().UTC()) {
		return nil, errors.NewUnauthorized()
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.NewUnauthorized()
	}
	return user, nil
}

// Logout removes a session from cache and durable storage.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("Failed to evict session from cache")
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}
