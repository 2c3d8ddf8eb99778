// Package uploads hands out presigned S3 URLs for stop photos. The
// server never proxies photo bytes; clients talk to object storage
// directly.
package uploads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kevinbuckley/tripwit/internal/common"
	sc "github.com/kevinbuckley/tripwit/internal/server/config"
)

const presignValidity = 15 * time.Minute

type Service struct {
	config *sc.Config
}

func NewService(config *sc.Config) *Service {
	return &Service{config: config}
}

// NewPhotoKey mints a date-bucketed object key for a stop photo.
func NewPhotoKey() string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *Service) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// PresignUpload returns a photo key and a presigned PUT URL for it. When
// the caller supplies no key a fresh one is minted.
func (s *Service) PresignUpload(ctx context.Context, key string) (string, string, error) {

	if key == "" {
		key = NewPhotoKey()
	} else if !strings.HasPrefix(key, "photos/") || strings.Contains(key, "..") {
		return "", "", fmt.Errorf("%w: bad photo key", common.ErrorValidation)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignDownload returns a presigned GET URL for an existing photo key.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, error) {

	if !strings.HasPrefix(key, "photos/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: bad photo key", common.ErrorValidation)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
