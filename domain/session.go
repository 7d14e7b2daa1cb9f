package domain

import "time"

// Session is an active local login session. The crosspost protocol never
// transmits sessions across sites; they only gate the token-issuance
// endpoint and the resolver entry points.
type Session struct {
	ID        string    `bson:"_id,omitempty"`
	UserID    string    `bson:"user_id"`
	UserAgent string    `bson:"user_agent,omitempty"`
	IPAddress string    `bson:"ip_address,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
