package uploads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/server/config"
)

func newTestService() *Service {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.S3Region = "us-east-1"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	cfg.S3RootUser = "minio"
	cfg.S3RootPassword = "minio123"
	return NewService(cfg)
}

func TestNewPhotoKey(t *testing.T) {
	k1 := NewPhotoKey()
	k2 := NewPhotoKey()
	assert.True(t, strings.HasPrefix(k1, "photos/"))
	assert.NotEqual(t, k1, k2)
}

func TestPresignUploadMintsKey(t *testing.T) {
	s := newTestService()

	key, url, err := s.PresignUpload(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "photos/"))
	assert.Contains(t, url, "X-Amz-Signature")
}

func TestPresignUploadKeepsExistingKey(t *testing.T) {
	s := newTestService()

	key, url, err := s.PresignUpload(context.Background(), "photos/2026/5/1/abc")
	require.NoError(t, err)
	assert.Equal(t, "photos/2026/5/1/abc", key)
	assert.Contains(t, url, "photos/2026/5/1/abc")
}

func TestPresignRejectsBadKeys(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, _, err := s.PresignUpload(ctx, "secrets/key")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, _, err = s.PresignUpload(ctx, "photos/../users")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.PresignDownload(ctx, "etc/passwd")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestPresignDownload(t *testing.T) {
	s := newTestService()

	url, err := s.PresignDownload(context.Background(), "photos/2026/5/1/abc")
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Signature")
}
