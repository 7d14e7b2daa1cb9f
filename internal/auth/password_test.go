package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashVerify(t *testing.T) {
	hasher := NewBcryptPasswordHasher(4)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, hasher.Verify(hash, "correct horse battery staple"))
	assert.Error(t, hasher.Verify(hash, "wrong"))
	assert.Error(t, hasher.Verify("not-a-hash", "anything"))
}

func TestBcryptDefaultCost(t *testing.T) {
	hasher := NewBcryptPasswordHasher(0)
	assert.Greater(t, hasher.Cost, 0)
}
