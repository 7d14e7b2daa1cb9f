package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlore/crosspost/cache"
	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
	"github.com/openlore/crosspost/internal/auth"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) GetSessionByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, errors.NewUnauthorized()
	}
	return session, nil
}

func (r *fakeSessionRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func newSessionFixture(t *testing.T) (*SessionService, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()
	hasher := auth.NewBcryptPasswordHasher(4)
	hash, err := hasher.Hash("hunter2")
	require.NoError(t, err)

	users := newFakeUserRepo(&domain.User{ID: "u1", Email: "a@example.com", PasswordHash: hash})
	repo := newFakeSessionRepo()
	store := cache.NewInMemorySessionStore()
	t.Cleanup(store.Stop)

	return NewSessionService(users, repo, store, hasher, time.Hour), users, repo
}

func TestLoginCreatesValidatableSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "a@example.com", "hunter2", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	user, err := svc.Validate(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "a@example.com", "wrong", "", "")
	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 403, apiErr.Code)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2", "", "")
	assert.Error(t, err)
}

func TestValidateFallsBackToRepository(t *testing.T) {
	svc, _, repo := newSessionFixture(t)
	ctx := context.Background()

	// Session present only in durable storage, as after a restart.
	session := &domain.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateSession(ctx, session))

	user, err := svc.Validate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestValidateRejectsExpiredAndUnknown(t *testing.T) {
	svc, _, repo := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, &domain.Session{
		ID:        "stale",
		UserID:    "u1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))

	_, err := svc.Validate(ctx, "stale")
	assert.Error(t, err)

	_, err = svc.Validate(ctx, "missing")
	assert.Error(t, err)

	_, err = svc.Validate(ctx, "")
	assert.Error(t, err)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "a@example.com", "hunter2", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.ID))

	_, err = svc.Validate(ctx, session.ID)
	assert.Error(t, err)
}
