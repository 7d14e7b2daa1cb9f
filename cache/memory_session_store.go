package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/openlore/crosspost/domain"
)

// InMemorySessionStore is the default SessionStore for single-process
// deployments, built on ttlcache. Entries expire at the session's own
// expiry.
type InMemorySessionStore struct {
	cache *ttlcache.Cache[string, *domain.Session]
}

// NewInMemorySessionStore creates the store and starts its cleanup
// goroutine. Call Stop on shutdown.
func NewInMemorySessionStore() *InMemorySessionStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.Session](),
	)
	go cache.Start()
	return &InMemorySessionStore{cache: cache}
}

// Stop terminates the cleanup goroutine.
func (s *InMemorySessionStore) Stop() {
	s.cache.Stop()
}

func (s *InMemorySessionStore) Set(_ context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(session.ID, session, ttl)
	return nil
}

func (s *InMemorySessionStore) Get(_ context.Context, id string) (*domain.Session, bool) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
