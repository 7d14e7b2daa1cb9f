package domain

import "context"

type contextKey string

// userContextKey is the key used to store the authenticated user in context.
const userContextKey contextKey = "crosspost_user"

// ContextWithUser returns a child context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user placed in the context by
// the session middleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
