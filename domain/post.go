package domain

import "time"

// CrosspostMirror is the field group recorded on a post that participates in
// crossposting. A post is either a plain local post (IsCrosspost false), the
// origin of a crosspost (HostedHere true, ForeignPostID pointing at the
// mirror), or a mirror (HostedHere false, ForeignPostID pointing at the
// origin). The role is fixed at creation; only the denormalized payload is
// updated afterwards.
type CrosspostMirror struct {
	IsCrosspost   bool   `bson:"is_crosspost" json:"isCrosspost"`
	HostedHere    bool   `bson:"hosted_here" json:"hostedHere"`
	ForeignPostID string `bson:"foreign_post_id,omitempty" json:"foreignPostId,omitempty"`
}

// Post represents a locally-owned forum post. As with User, only the fields
// the protocol touches are modeled.
type Post struct {
	ID           string           `bson:"_id,omitempty"`
	UserID       string           `bson:"user_id"`
	Title        string           `bson:"title"`
	Draft        bool             `bson:"draft"`
	DeletedDraft bool             `bson:"deleted_draft"`
	Crosspost    *CrosspostMirror `bson:"crosspost,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// IsMirror reports whether this post is the mirror half of a crosspost pair.
func (p *Post) IsMirror() bool {
	return p.Crosspost != nil && p.Crosspost.IsCrosspost && !p.Crosspost.HostedHere
}

// IsOrigin reports whether this post is the authoritative half of a
// crosspost pair.
func (p *Post) IsOrigin() bool {
	return p.Crosspost != nil && p.Crosspost.IsCrosspost && p.Crosspost.HostedHere
}
