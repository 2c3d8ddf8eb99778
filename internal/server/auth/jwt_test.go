package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := GenerateToken("user-42", secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := GenerateToken("user-42", secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	tok, err := GenerateToken("user-42", []byte("right"), time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong"))
	require.Error(t, err)
}
