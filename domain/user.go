package domain

import "time"

// User represents a locally-owned forum account. Only the fields the
// crosspost protocol reads or writes are modeled here; the host forum owns
// the full record schema.
type User struct {
	ID           string `bson:"_id,omitempty"`
	Email        string `bson:"email,unique"`
	DisplayName  string `bson:"display_name,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty"`

	// CrosspostUserID points at this user's linked account on the remote
	// site. Nil means no link. Set by the connect flow, cleared by unlink,
	// never mutated otherwise.
	CrosspostUserID *string `bson:"crosspost_user_id,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// IsLinked reports whether this user has a crosspost account link recorded
// on this side. A true result does not imply the remote side points back;
// see LinkState.
func (u *User) IsLinked() bool {
	return u != nil && u.CrosspostUserID != nil && *u.CrosspostUserID != ""
}
