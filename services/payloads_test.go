package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
)

func TestCheckFields(t *testing.T) {
	fields := []Field{
		{Name: "postId", Kind: KindString},
		{Name: "draft", Kind: KindBool},
	}

	tests := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{
			name:    "well formed",
			payload: map[string]any{"postId": "p1", "draft": false},
			want:    true,
		},
		{
			name:    "extra fields are ignored",
			payload: map[string]any{"postId": "p1", "draft": true, "exp": 12345},
			want:    true,
		},
		{
			name:    "missing field",
			payload: map[string]any{"postId": "p1"},
			want:    false,
		},
		{
			name:    "empty string fails",
			payload: map[string]any{"postId": "", "draft": false},
			want:    false,
		},
		{
			name:    "wrong kind for string",
			payload: map[string]any{"postId": 7, "draft": false},
			want:    false,
		},
		{
			name:    "wrong kind for bool",
			payload: map[string]any{"postId": "p1", "draft": "yes"},
			want:    false,
		},
		{
			name:    "false bool is valid",
			payload: map[string]any{"postId": "p1", "draft": false},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckFields(tt.payload, fields))
		})
	}
}

// The payload schemas must stay aligned with the denormalization policy, so
// adding a synced field cannot silently miss the token validators.
func TestDenormalizedFieldSpecMatchesPolicy(t *testing.T) {
	names := domain.DenormalizedFieldNames()
	require.Len(t, denormalizedFieldSpec, len(names))
	for i, field := range denormalizedFieldSpec {
		assert.Equal(t, names[i], field.Name)
	}
}

func TestPayloadSchemasIncludeDenormalizedFields(t *testing.T) {
	crosspost := FieldNames(CrosspostPayload{}.Fields())
	update := FieldNames(UpdateCrosspostPayload{}.Fields())

	for _, name := range domain.DenormalizedFieldNames() {
		assert.Contains(t, crosspost, name)
		assert.Contains(t, update, name)
	}
	assert.Contains(t, crosspost, "localUserId")
	assert.Contains(t, crosspost, "foreignUserId")
	assert.Contains(t, update, "postId")
}

func TestRequirePostParams(t *testing.T) {
	body := map[string]any{"token": "abc", "localUserId": "u1"}

	params, err := RequirePostParams(body, []string{"token", "localUserId"})
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "u1"}, params)

	_, err = RequirePostParams(body, []string{"token", "postId"})
	require.Error(t, err)
	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Message, "postId")
}
