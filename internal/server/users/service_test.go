package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/server/auth"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/server/refreshtokens"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	rt, err := refreshtokens.NewInMemoryRepository()
	require.NoError(t, err)
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	return NewService(NewInMemoryRepository(), rt, cfg)
}

func TestRegisterHashesSecret(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "phone-1", "opensesame")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, []byte("opensesame"), user.SecretHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.SecretHash, []byte("opensesame")))
}

func TestRegisterDuplicateLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "phone-1", "a")
	require.NoError(t, err)
	_, err = s.Register(ctx, "phone-1", "b")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "phone-1", "opensesame")
	require.NoError(t, err)

	t.Run("correct secret", func(t *testing.T) {
		pair, err := s.Login(ctx, "phone-1", "opensesame")
		require.NoError(t, err)
		assert.Equal(t, user.ID, pair.UserID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		id, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("test-secret"))
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := s.Login(ctx, "phone-1", "wrong")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := s.Login(ctx, "nobody", "opensesame")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "phone-1", "opensesame")
	require.NoError(t, err)

	pair, err := s.Login(ctx, "phone-1", "opensesame")
	require.NoError(t, err)

	next, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the spent token is single use
	_, err = s.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	s := newTestService(t)
	_, err := s.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
