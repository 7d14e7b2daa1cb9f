package domain

import "context"

// UserRepository defines the user-store operations the crosspost protocol
// needs. Implementations only touch the fields modeled on User, never the
// host forum's full record schema.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// SetCrosspostUserID records the remote counterpart for a user.
	// Re-setting the same value is a no-op, which makes the connect
	// handshake safely re-runnable.
	SetCrosspostUserID(ctx context.Context, userID, foreignUserID string) error

	// ClearCrosspostUserID removes the link field entirely.
	ClearCrosspostUserID(ctx context.Context, userID string) error
}

// PostRepository defines the post-store operations the protocol needs.
type PostRepository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPostByID(ctx context.Context, id string) (*Post, error)

	// UpdateDenormalizedData overwrites exactly the denormalized field set
	// on a post, leaving every other field untouched.
	UpdateDenormalizedData(ctx context.Context, postID string, data DenormalizedCrosspostData) error

	// SetForeignPostID records the mirror's id on an origin post after a
	// successful crosspost exchange.
	SetForeignPostID(ctx context.Context, postID, foreignPostID string) error
}

// SessionRepository defines durable session storage. A SessionStore cache
// may sit in front of it.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}
