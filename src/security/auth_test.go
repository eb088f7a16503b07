package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/termtrack/backend/src/config"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	original := config.Cfg
	config.Cfg = &config.AppConfig{
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}
	t.Cleanup(func() { config.Cfg = original })
}

func TestPasswordHashRoundTrip(t *testing.T) {
	service := NewAuthService("test-secret-at-least-32-bytes-long!!")

	hash, err := service.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, service.CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.Error(t, service.CompareHashAndPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	setupTestConfig(t)
	service := NewAuthService("test-secret-at-least-32-bytes-long!!")

	token, err := service.GenerateToken("42")
	require.NoError(t, err)

	sub, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	setupTestConfig(t)
	issuer := NewAuthService("test-secret-at-least-32-bytes-long!!")
	verifier := NewAuthService("a-different-secret-also-32-bytes!!!!")

	token, err := issuer.GenerateToken("42")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setupTestConfig(t)
	service := NewAuthService("test-secret-at-least-32-bytes-long!!")

	_, err := service.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshTokenIsUnique(t *testing.T) {
	service := NewAuthService("test-secret-at-least-32-bytes-long!!")

	first, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NotEmpty(t, first)
}
