package auth

import (
	"testing"
	"time"

	"github.com/inkwellblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	tg := newTestTokenGenerator()

	accessToken, refreshToken, err := tg.GenerateTokens(42, models.RoleAdmin)

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	tg := newTestTokenGenerator()

	t.Run("valid token round trip", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(42, models.RoleAdmin)
		require.NoError(t, err)

		userID, role, err := tg.ValidateAccessToken(accessToken)

		require.NoError(t, err)
		assert.Equal(t, 42, userID)
		assert.Equal(t, models.RoleAdmin, role)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(refreshToken)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an access token")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenGenerator("other-secret", time.Minute, time.Hour)
		accessToken, _, err := other.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)

		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenGenerator("test-secret", -time.Minute, time.Hour)
		accessToken, _, err := expired.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)

		require.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := tg.ValidateAccessToken("not-a-jwt")

		require.Error(t, err)
	})
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	tg := newTestTokenGenerator()

	t.Run("valid token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		assert.NoError(t, tg.ValidateRefreshToken(refreshToken))
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		err = tg.ValidateRefreshToken(accessToken)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a refresh token")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenGenerator("test-secret", time.Minute, -time.Hour)
		_, refreshToken, err := expired.GenerateTokens(42, models.RoleUser)
		require.NoError(t, err)

		assert.Error(t, tg.ValidateRefreshToken(refreshToken))
	})
}
