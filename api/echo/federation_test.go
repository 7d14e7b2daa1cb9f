package echo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/internal/auth"
	"github.com/openlore/crosspost/services"
)

// twoSites wires two complete site instances whose outbound clients point
// at each other over real HTTP.
func twoSites(t *testing.T) (*site, *site) {
	t.Helper()

	var siteA, siteB *site
	serverA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siteA.echo.ServeHTTP(w, r)
	}))
	t.Cleanup(serverA.Close)
	serverB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siteB.echo.ServeHTTP(w, r)
	}))
	t.Cleanup(serverB.Close)

	siteA = newSite(t, serverB.URL)
	siteB = newSite(t, serverA.URL)
	return siteA, siteB
}

func loginUser(t *testing.T, s *site, userID string) string {
	t.Helper()
	hash, err := auth.NewBcryptPasswordHasher(4).Hash("hunter2")
	require.NoError(t, err)
	s.users.users[userID].PasswordHash = hash

	rec := s.request(t, http.MethodPost, "/api/local/login",
		map[string]string{"email": userID + "@example.com", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeJSON(t, rec)["sessionId"]
}

// The full account-link handshake: A mints a token for u_a, u_b presents it
// through B's resolver, and both sides end up pointing at each other.
func TestConnectHandshakeEndsSymmetric(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteB.addUser(t, "u_b")
	sessionB := loginUser(t, siteB, "u_b")

	token, err := siteA.tokens.Sign(services.ConnectCrossposterPayload{UserID: "u_a"})
	require.NoError(t, err)

	rec := siteB.request(t, http.MethodPost, "/api/local/connectCrossposter",
		map[string]string{"token": token},
		map[string]string{echo.HeaderAuthorization: "Bearer " + sessionB})
	require.Equal(t, http.StatusOK, rec.Code)

	userA, err := siteA.users.GetUserByID(context.Background(), "u_a")
	require.NoError(t, err)
	require.NotNil(t, userA.CrosspostUserID)
	assert.Equal(t, "u_b", *userA.CrosspostUserID)

	userB, err := siteB.users.GetUserByID(context.Background(), "u_b")
	require.NoError(t, err)
	require.NotNil(t, userB.CrosspostUserID)
	assert.Equal(t, "u_a", *userB.CrosspostUserID)

	assert.Equal(t, domain.StateLinked, domain.ResolveLinkState(userB, *userA.CrosspostUserID))
}

func TestUnlinkClearsBothSides(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteB.addUser(t, "u_b")
	siteA.linkUser(t, "u_a", "u_b")
	siteB.linkUser(t, "u_b", "u_a")
	sessionB := loginUser(t, siteB, "u_b")

	rec := siteB.request(t, http.MethodPost, "/api/local/unlinkCrossposter", map[string]string{},
		map[string]string{echo.HeaderAuthorization: "Bearer " + sessionB})
	require.Equal(t, http.StatusOK, rec.Code)

	userA, err := siteA.users.GetUserByID(context.Background(), "u_a")
	require.NoError(t, err)
	assert.Nil(t, userA.CrosspostUserID)

	userB, err := siteB.users.GetUserByID(context.Background(), "u_b")
	require.NoError(t, err)
	assert.Nil(t, userB.CrosspostUserID)
}

// Publishing an origin post on A creates the mirror on B and records the
// mirror's id back on the origin.
func TestCrosspostFlowCreatesMirror(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteB.addUser(t, "u_b")
	siteA.linkUser(t, "u_a", "u_b")
	siteB.linkUser(t, "u_b", "u_a")

	origin := &domain.Post{
		ID:     "p_origin",
		UserID: "u_a",
		Title:  "Example",
		Crosspost: &domain.CrosspostMirror{
			IsCrosspost: true,
			HostedHere:  true,
		},
	}
	require.NoError(t, siteA.posts.CreatePost(context.Background(), origin))

	require.NoError(t, siteA.crossposter.PerformCrosspost(context.Background(), origin))
	require.NotEmpty(t, origin.Crosspost.ForeignPostID)

	mirror, err := siteB.posts.GetPostByID(context.Background(), origin.Crosspost.ForeignPostID)
	require.NoError(t, err)
	assert.Equal(t, "u_b", mirror.UserID)
	assert.Equal(t, "Example", mirror.Title)
	require.NotNil(t, mirror.Crosspost)
	assert.True(t, mirror.Crosspost.IsCrosspost)
	assert.False(t, mirror.Crosspost.HostedHere)
	assert.Equal(t, "p_origin", mirror.Crosspost.ForeignPostID)

	stored, err := siteA.posts.GetPostByID(context.Background(), "p_origin")
	require.NoError(t, err)
	assert.Equal(t, mirror.ID, stored.Crosspost.ForeignPostID)
}

func TestCrosspostFlowSkipsDrafts(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteA.linkUser(t, "u_a", "u_b")

	draft := &domain.Post{
		ID:     "p_draft",
		UserID: "u_a",
		Title:  "Not yet",
		Draft:  true,
		Crosspost: &domain.CrosspostMirror{
			IsCrosspost: true,
			HostedHere:  true,
		},
	}
	require.NoError(t, siteA.crossposter.PerformCrosspost(context.Background(), draft))
	assert.Empty(t, draft.Crosspost.ForeignPostID)
	assert.Zero(t, siteB.posts.count())
}

// The update flow pushes fresh denormalized data to an existing mirror, and
// publishing a previously-drafted origin creates the mirror on the same
// pass.
func TestUpdateFlowRefreshesMirror(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteB.addUser(t, "u_b")
	siteA.linkUser(t, "u_a", "u_b")
	siteB.linkUser(t, "u_b", "u_a")

	origin := &domain.Post{
		ID:     "p_origin",
		UserID: "u_a",
		Title:  "Old",
		Crosspost: &domain.CrosspostMirror{
			IsCrosspost: true,
			HostedHere:  true,
		},
	}
	require.NoError(t, siteA.posts.CreatePost(context.Background(), origin))
	require.NoError(t, siteA.crossposter.PerformCrosspost(context.Background(), origin))
	mirrorID := origin.Crosspost.ForeignPostID
	require.NotEmpty(t, mirrorID)

	origin.Title = "New"
	require.NoError(t, siteA.crossposter.HandleCrosspostUpdate(
		context.Background(), origin, []string{"title"}))

	mirror, err := siteB.posts.GetPostByID(context.Background(), mirrorID)
	require.NoError(t, err)
	assert.Equal(t, "New", mirror.Title)
	assert.False(t, mirror.Draft)
	assert.Equal(t, "u_b", mirror.UserID)
	// Only one mirror exists; the update pass must not create another.
	assert.Equal(t, 1, siteB.posts.count())
}

func TestHandleCrosspostUpdateIgnoresUnsyncedFields(t *testing.T) {
	siteA, siteB := twoSites(t)
	siteA.addUser(t, "u_a")
	siteB.addUser(t, "u_b")
	siteA.linkUser(t, "u_a", "u_b")
	siteB.linkUser(t, "u_b", "u_a")

	origin := &domain.Post{
		ID:     "p_origin",
		UserID: "u_a",
		Title:  "Stable",
		Crosspost: &domain.CrosspostMirror{
			IsCrosspost: true,
			HostedHere:  true,
		},
	}
	require.NoError(t, siteA.posts.CreatePost(context.Background(), origin))
	require.NoError(t, siteA.crossposter.PerformCrosspost(context.Background(), origin))
	mirrorID := origin.Crosspost.ForeignPostID

	before, err := siteB.posts.GetPostByID(context.Background(), mirrorID)
	require.NoError(t, err)
	updatedAt := before.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, siteA.crossposter.HandleCrosspostUpdate(
		context.Background(), origin, []string{"tags"}))

	after, err := siteB.posts.GetPostByID(context.Background(), mirrorID)
	require.NoError(t, err)
	assert.Equal(t, updatedAt, after.UpdatedAt)
}
