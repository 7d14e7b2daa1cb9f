// Package echo exposes the crosspost protocol over HTTP: the cross-site
// endpoints secured by capability tokens, and the site-local mutation
// endpoints secured by a login session.
package echo

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
	"github.com/openlore/crosspost/middleware"
	"github.com/openlore/crosspost/services"
)

// requestBodyLimit caps every POST body on the protocol surface.
const requestBodyLimit = "1M"

// CrosspostAPI holds the dependencies of the protocol's HTTP surface.
type CrosspostAPI struct {
	users       domain.UserRepository
	posts       domain.PostRepository
	tokens      *services.TokenService
	sessions    *services.SessionService
	crossposter *services.Crossposter
}

// NewCrosspostAPI initializes the API.
func NewCrosspostAPI(
	users domain.UserRepository,
	posts domain.PostRepository,
	tokens *services.TokenService,
	sessions *services.SessionService,
	crossposter *services.Crossposter,
) *CrosspostAPI {
	return &CrosspostAPI{
		users:       users,
		posts:       posts,
		tokens:      tokens,
		sessions:    sessions,
		crossposter: crossposter,
	}
}

// RegisterRoutes registers the protocol routes. The cross-site POST routes
// carry their own token-based authorization; only token issuance and the
// local mutations require a session.
func (a *CrosspostAPI) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = HTTPErrorHandler

	sessionAuth := middleware.SessionAuth(a.sessions)
	bodyLimit := echomw.BodyLimit(requestBodyLimit)

	e.GET("/api/crosspostToken", a.CrosspostTokenHandler, sessionAuth)
	e.POST("/api/connectCrossposter", a.ConnectCrossposterHandler, bodyLimit)
	e.POST("/api/unlinkCrossposter", a.UnlinkCrossposterHandler, bodyLimit)
	e.POST("/api/crosspost", a.CrosspostHandler, bodyLimit)
	e.POST("/api/updateCrosspost", a.UpdateCrosspostHandler, bodyLimit)

	// Site-local surface, not part of the cross-site protocol.
	e.POST("/api/local/login", a.LoginHandler, bodyLimit)
	e.POST("/api/local/logout", a.LogoutHandler, sessionAuth, bodyLimit)
	e.POST("/api/local/connectCrossposter", a.ConnectCrossposterMutation, sessionAuth, bodyLimit)
	e.POST("/api/local/unlinkCrossposter", a.UnlinkCrossposterMutation, sessionAuth, bodyLimit)
}

// HTTPErrorHandler is the uniform error envelope: APIErrors map to their
// declared status and message, everything else to a generic 500 with the
// error's message. Stack traces never leak.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if apiErr, ok := errors.AsAPIError(err); ok {
		if apiErr.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		}
		_ = c.JSON(apiErr.Code, map[string]string{"error": apiErr.Message})
		return
	}
	if httpErr, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(httpErr.Code, map[string]string{"error": http.StatusText(httpErr.Code)})
		return
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// decodeBody parses a JSON request body into an untyped map for the shallow
// structural checks.
func decodeBody(c echo.Context) (map[string]any, error) {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return nil, errors.NewMissingParameters(nil, nil)
	}
	return body, nil
}

// CrosspostTokenHandler mints a connect token for the authenticated user.
// The user pastes this token into the other site, which presents it back to
// the connect endpoint here.
func (a *CrosspostAPI) CrosspostTokenHandler(c echo.Context) error {
	user, ok := domain.UserFromContext(c.Request().Context())
	if !ok {
		return errors.NewUnauthorized()
	}
	token, err := a.tokens.Sign(services.ConnectCrossposterPayload{UserID: user.ID})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// ConnectCrossposterHandler performs this site's half of the account-link
// handshake: the token proves the request originates from the user the
// token was minted for, and this site records the presented local user id
// as that user's link.
func (a *CrosspostAPI) ConnectCrossposterHandler(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"token", "localUserId"})
	if err != nil {
		return err
	}
	token, localUserID := params[0], params[1]

	payload, err := services.VerifyToken[services.ConnectCrossposterPayload](a.tokens, token)
	if err != nil {
		return err
	}
	foreignUserID := payload.UserID

	ctx := c.Request().Context()
	if err := a.users.SetCrosspostUserID(ctx, foreignUserID, localUserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":        "connected",
		"foreignUserId": foreignUserID,
		"localUserId":   localUserID,
	})
}

// UnlinkCrossposterHandler clears this site's half of the link for the user
// named in the token.
func (a *CrosspostAPI) UnlinkCrossposterHandler(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"token"})
	if err != nil {
		return err
	}

	payload, err := services.VerifyToken[services.UnlinkCrossposterPayload](a.tokens, params[0])
	if err != nil {
		return err
	}
	if err := a.users.ClearCrosspostUserID(c.Request().Context(), payload.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unlinked"})
}

// CrosspostHandler creates the mirror half of a crosspost pair. Trust is
// re-derived locally: the token's claimed link must match the link this
// site has on record for the target user, so a token alone cannot plant
// posts on unlinked accounts.
func (a *CrosspostAPI) CrosspostHandler(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"token", "postId", "postTitle"})
	if err != nil {
		return err
	}
	token, postID, postTitle := params[0], params[1], params[2]

	payload, err := services.VerifyToken[services.CrosspostPayload](a.tokens, token)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := a.users.GetUserByID(ctx, payload.ForeignUserID)
	if err != nil || user.CrosspostUserID == nil || *user.CrosspostUserID != payload.LocalUserID {
		return errors.NewInvalidUser()
	}

	post := &domain.Post{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Title:        postTitle,
		Draft:        payload.Draft,
		DeletedDraft: payload.DeletedDraft,
		Crosspost: &domain.CrosspostMirror{
			IsCrosspost:   true,
			HostedHere:    false,
			ForeignPostID: postID,
		},
	}
	if err := a.posts.CreatePost(ctx, post); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "posted",
		"postId": post.ID,
	})
}

// UpdateCrosspostHandler overwrites exactly the denormalized field set on
// the mirror named in the token. No user-identity check beyond token
// validity: the payload is scoped to one post and three fields.
func (a *CrosspostAPI) UpdateCrosspostHandler(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"token"})
	if err != nil {
		return err
	}

	payload, err := services.VerifyToken[services.UpdateCrosspostPayload](a.tokens, params[0])
	if err != nil {
		return err
	}
	if err := a.posts.UpdateDenormalizedData(c.Request().Context(), payload.PostID, payload.DenormalizedCrosspostData); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// LoginHandler creates a local session. Site-local; sessions never travel
// across the protocol.
func (a *CrosspostAPI) LoginHandler(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"email", "password"})
	if err != nil {
		return err
	}

	session, err := a.sessions.Login(
		c.Request().Context(),
		params[0], params[1],
		c.Request().UserAgent(),
		c.RealIP(),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"sessionId": session.ID})
}

// LogoutHandler ends the caller's session.
func (a *CrosspostAPI) LogoutHandler(c echo.Context) error {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		return errors.NewUnauthorized()
	}
	if err := a.sessions.Logout(c.Request().Context(), sessionID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// ConnectCrossposterMutation is the initiating-side resolver: it presents a
// foreign-minted token to the remote site and stores the returned link.
func (a *CrosspostAPI) ConnectCrossposterMutation(c echo.Context) error {
	user, ok := domain.UserFromContext(c.Request().Context())
	if !ok {
		return errors.NewUnauthorized()
	}
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	params, err := services.RequirePostParams(body, []string{"token"})
	if err != nil {
		return err
	}
	if err := a.crossposter.ConnectCrossposter(c.Request().Context(), user.ID, params[0]); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// UnlinkCrossposterMutation is the initiating-side unlink resolver.
func (a *CrosspostAPI) UnlinkCrossposterMutation(c echo.Context) error {
	user, ok := domain.UserFromContext(c.Request().Context())
	if !ok {
		return errors.NewUnauthorized()
	}
	if err := a.crossposter.UnlinkCrossposter(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
