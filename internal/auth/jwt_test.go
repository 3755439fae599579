package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager(
		strings.Repeat("a", 32),
		strings.Repeat("b", 32),
		15*time.Minute,
		168*time.Hour,
	)
}

func TestGenerateTokenPair(t *testing.T) {
	m := newTestJWTManager()

	pair, tokenID, err := m.GenerateTokenPair("user-1", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, tokenID)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}

func TestValidateAccessToken(t *testing.T) {
	m := newTestJWTManager()
	pair, _, err := m.GenerateTokenPair("user-1", "alice")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	m := newTestJWTManager()
	pair, _, err := m.GenerateTokenPair("user-1", "alice")
	require.NoError(t, err)

	// Signed with the refresh secret, must not validate as an access token.
	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	m := newTestJWTManager()
	pair, tokenID, err := m.GenerateTokenPair("user-1", "alice")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := NewJWTManager(strings.Repeat("a", 32), strings.Repeat("b", 32), -time.Minute, 168*time.Hour)
	pair, _, err := m.GenerateTokenPair("user-1", "alice")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	m := newTestJWTManager()
	_, err := m.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
