package domain

// DenormalizedCrosspostData is the fixed subset of post fields the origin
// site copies onto its mirror. The mirror's copy is only as fresh as the
// last successful update call.
type DenormalizedCrosspostData struct {
	Title        string `bson:"title" json:"title"`
	Draft        bool   `bson:"draft" json:"draft"`
	DeletedDraft bool   `bson:"deleted_draft" json:"deletedDraft"`
}

// denormalizedFieldNames is the single definition of which fields are
// synced. Both the crosspost and updateCrosspost flows derive their payloads
// from this list, so the two flows cannot drift into syncing different
// field sets.
var denormalizedFieldNames = []string{"title", "draft", "deletedDraft"}

// DenormalizedFieldNames returns the ordered list of field names that make
// up the denormalized crosspost data. The returned slice is a copy.
func DenormalizedFieldNames() []string {
	names := make([]string, len(denormalizedFieldNames))
	copy(names, denormalizedFieldNames)
	return names
}

// ExtractDenormalizedData projects a post down to exactly the denormalized
// field set, dropping everything else.
func ExtractDenormalizedData(post *Post) DenormalizedCrosspostData {
	return DenormalizedCrosspostData{
		Title:        post.Title,
		Draft:        post.Draft,
		DeletedDraft: post.DeletedDraft,
	}
}
