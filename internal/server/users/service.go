package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/server/auth"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/server/refreshtokens"
	"github.com/kevinbuckley/tripwit/internal/shared"
)

type TokenPair struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (s *Service) Register(ctx context.Context, login string, secret string) (*User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing secret: %v", err)
	}

	user := &User{
		Login:      login,
		SecretHash: hash,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) generateRefreshToken() (string, error) {
	token, err := shared.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{UserID: user.ID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) Login(ctx context.Context, login string, secret string) (*TokenPair, error) {

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.SecretHash, []byte(secret)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a still-valid refresh token for a fresh pair.
// The presented token is invalidated even when issuing the new pair fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	userID, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, user)
}
