package services

import (
	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
)

// Kind is the primitive type a payload field must carry.
type Kind int

const (
	KindString Kind = iota
	KindBool
)

// Field pairs a payload field name with its expected primitive kind.
type Field struct {
	Name string
	Kind Kind
}

// CheckFields reports whether every expected field is present in the decoded
// payload with the right primitive kind. This check is deliberately shallow:
// presence and type only, no semantic validation (it does not check that a
// postId actually exists). String fields must be non-empty; bool fields may
// be false.
func CheckFields(payload map[string]any, fields []Field) bool {
	for _, f := range fields {
		value, ok := payload[f.Name]
		if !ok {
			return false
		}
		switch f.Kind {
		case KindString:
			s, ok := value.(string)
			if !ok || s == "" {
				return false
			}
		case KindBool:
			if _, ok := value.(bool); !ok {
				return false
			}
		}
	}
	return true
}

// FieldNames returns just the names from a field spec, for diagnostics.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// denormalizedFieldSpec is the structural spec for the denormalized
// crosspost data embedded in token payloads. It must stay aligned with
// domain.DenormalizedFieldNames; a test asserts this.
var denormalizedFieldSpec = []Field{
	{Name: "title", Kind: KindString},
	{Name: "draft", Kind: KindBool},
	{Name: "deletedDraft", Kind: KindBool},
}

// TokenPayload is one of the typed payloads a capability token can carry.
// Each endpoint defines its own schema, so a token minted for one operation
// cannot be replayed against another even though all tokens share one
// secret and one signing algorithm.
type TokenPayload interface {
	// Fields is the structural schema checked after signature
	// verification.
	Fields() []Field
}

// ConnectCrossposterPayload authorizes linking the bearer to the account
// identified by UserID on the issuing site.
type ConnectCrossposterPayload struct {
	UserID string `json:"userId"`
}

func (ConnectCrossposterPayload) Fields() []Field {
	return []Field{{Name: "userId", Kind: KindString}}
}

// UnlinkCrossposterPayload authorizes clearing the link on the account
// identified by UserID.
type UnlinkCrossposterPayload struct {
	UserID string `json:"userId"`
}

func (UnlinkCrossposterPayload) Fields() []Field {
	return []Field{{Name: "userId", Kind: KindString}}
}

// CrosspostPayload authorizes creating one mirror post. LocalUserID is the
// author on the origin site; ForeignUserID is the linked account expected on
// the receiving site. The receiving handler re-derives trust from its own
// stored link state rather than trusting these claims alone.
type CrosspostPayload struct {
	LocalUserID   string `json:"localUserId"`
	ForeignUserID string `json:"foreignUserId"`
	domain.DenormalizedCrosspostData
}

func (CrosspostPayload) Fields() []Field {
	fields := []Field{
		{Name: "localUserId", Kind: KindString},
		{Name: "foreignUserId", Kind: KindString},
	}
	return append(fields, denormalizedFieldSpec...)
}

// UpdateCrosspostPayload authorizes overwriting the denormalized field set
// on exactly one mirror post. It deliberately carries nothing else, which
// keeps the blast radius of a leaked update token narrow.
type UpdateCrosspostPayload struct {
	PostID string `json:"postId"`
	domain.DenormalizedCrosspostData
}

func (UpdateCrosspostPayload) Fields() []Field {
	fields := []Field{{Name: "postId", Kind: KindString}}
	return append(fields, denormalizedFieldSpec...)
}

// RequirePostParams extracts named string parameters from a decoded request
// body, failing with a MissingParameters error naming the full expected list
// when any is absent or empty.
func RequirePostParams(body map[string]any, names []string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		value, _ := body[name].(string)
		if value == "" {
			return nil, errors.NewMissingParameters(names, body)
		}
		values[i] = value
	}
	return values, nil
}
