package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/errors"
)

const testSecret = "shared-test-secret"

func TestSignVerifyRoundTrip(t *testing.T) {
	ts := NewTokenService(testSecret)

	t.Run("connect", func(t *testing.T) {
		token, err := ts.Sign(ConnectCrossposterPayload{UserID: "u_a"})
		require.NoError(t, err)

		payload, err := VerifyToken[ConnectCrossposterPayload](ts, token)
		require.NoError(t, err)
		assert.Equal(t, ConnectCrossposterPayload{UserID: "u_a"}, payload)
	})

	t.Run("unlink", func(t *testing.T) {
		token, err := ts.Sign(UnlinkCrossposterPayload{UserID: "u_b"})
		require.NoError(t, err)

		payload, err := VerifyToken[UnlinkCrossposterPayload](ts, token)
		require.NoError(t, err)
		assert.Equal(t, "u_b", payload.UserID)
	})

	t.Run("crosspost", func(t *testing.T) {
		in := CrosspostPayload{
			LocalUserID:   "u_a",
			ForeignUserID: "u_b",
			DenormalizedCrosspostData: domain.DenormalizedCrosspostData{
				Title: "Example", Draft: false, DeletedDraft: false,
			},
		}
		token, err := ts.Sign(in)
		require.NoError(t, err)

		payload, err := VerifyToken[CrosspostPayload](ts, token)
		require.NoError(t, err)
		assert.Equal(t, in, payload)
	})

	t.Run("update", func(t *testing.T) {
		in := UpdateCrosspostPayload{
			PostID: "p2",
			DenormalizedCrosspostData: domain.DenormalizedCrosspostData{
				Title: "New", Draft: true, DeletedDraft: false,
			},
		}
		token, err := ts.Sign(in)
		require.NoError(t, err)

		payload, err := VerifyToken[UpdateCrosspostPayload](ts, token)
		require.NoError(t, err)
		assert.Equal(t, in, payload)
	})
}

// A token minted for one operation must not verify against another
// operation's schema, even though the signature is valid.
func TestVerifyRejectsWrongPayloadKind(t *testing.T) {
	ts := NewTokenService(testSecret)

	token, err := ts.Sign(ConnectCrossposterPayload{UserID: "u_a"})
	require.NoError(t, err)

	_, err = VerifyToken[CrosspostPayload](ts, token)
	require.Error(t, err)
	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Message, "Invalid token payload")
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	ts := NewTokenService(testSecret)

	issued := time.Now().Add(-TokenExpiry - time.Minute)
	ts.now = func() time.Time { return issued }
	token, err := ts.Sign(ConnectCrossposterPayload{UserID: "u_a"})
	require.NoError(t, err)

	ts.now = time.Now
	_, err = VerifyToken[ConnectCrossposterPayload](ts, token)
	require.Error(t, err)
	_, isAPIErr := errors.AsAPIError(err)
	assert.False(t, isAPIErr, "expiry failures come from the jwt library, not the payload check")
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	ts := NewTokenService(testSecret)
	other := NewTokenService("a-different-secret")

	token, err := other.Sign(ConnectCrossposterPayload{UserID: "u_a"})
	require.NoError(t, err)

	_, err = VerifyToken[ConnectCrossposterPayload](ts, token)
	assert.Error(t, err)
}

func TestMissingSecretIsConfigurationError(t *testing.T) {
	ts := NewTokenService("")

	_, err := ts.Sign(ConnectCrossposterPayload{UserID: "u_a"})
	assert.ErrorIs(t, err, errors.ErrMissingSecret)

	_, err = VerifyToken[ConnectCrossposterPayload](ts, "whatever")
	assert.ErrorIs(t, err, errors.ErrMissingSecret)
}
