// Package middleware provides the session authentication gate for the
// endpoints that require a local login rather than a capability token.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
	"github.com/openlore/crosspost/services"
)

// SessionCookieName is the cookie carrying the local session id.
const SessionCookieName = "loginToken"

// SessionAuth resolves the caller's session and places the authenticated
// user into the request context. Requests without a valid session fail with
// the authorization error; capability-token endpoints do not use this
// middleware at all.
func SessionAuth(sessions *services.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := SessionID(c)
			if sessionID == "" {
				return errors.NewUnauthorized()
			}
			user, err := sessions.Validate(c.Request().Context(), sessionID)
			if err != nil {
				return err
			}
			ctx := domain.ContextWithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SessionID extracts the caller's session id from either a bearer token or
// the login cookie. Empty means the request carries no session.
func SessionID(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
