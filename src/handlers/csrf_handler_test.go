package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedCSRFTokenRoundTrip(t *testing.T) {
	authKey := []byte("test-csrf-auth-key-32-bytes-long!!!!")

	token, err := generateSignedToken(authKey)
	require.NoError(t, err)
	assert.True(t, verifySignedToken(authKey, token))
}

func TestVerifySignedTokenRejectsTampering(t *testing.T) {
	authKey := []byte("test-csrf-auth-key-32-bytes-long!!!!")

	token, err := generateSignedToken(authKey)
	require.NoError(t, err)

	assert.False(t, verifySignedToken(authKey, token+"x"))
	assert.False(t, verifySignedToken(authKey, "payload-without-signature"))
	assert.False(t, verifySignedToken([]byte("another-key-thats-also-32-bytes!!!!!"), token))
	assert.False(t, verifySignedToken(authKey, ""))
}

func TestGenerateSignedTokensAreUnique(t *testing.T) {
	authKey := []byte("test-csrf-auth-key-32-bytes-long!!!!")

	first, err := generateSignedToken(authKey)
	require.NoError(t, err)
	second, err := generateSignedToken(authKey)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
