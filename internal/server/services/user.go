// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/dbx"
	"github.com/dmitrijs2005/lifekeeper/internal/server/auth"
	"github.com/dmitrijs2005/lifekeeper/internal/server/config"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput is what a new account is created from.
type RegisterInput struct {
	Username string
	Password string
	Name     *string
	Email    *string
}

// UserService provides authentication-related operations:
// - Register: create users together with their module settings
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates the user, gives it one settings record per catalog module
// and opens a session, all in one transaction. A taken username yields
// common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	hash, salt := auth.HashPassword(in.Password)
	user := &models.User{
		UserName:     username,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Salt:         salt,
	}

	var (
		created *models.User
		pair    *TokenPair
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		if _, err := s.repomanager.Settings(tx).InitializeForUser(ctx, u.ID); err != nil {
			return fmt.Errorf("error initializing settings: %w", err)
		}
		p, err := s.generateTokenPair(ctx, u.ID, tx)
		if err != nil {
			return err
		}
		created, pair = u, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, pair, nil
}

// Login verifies the password against the stored hash and, on success,
// returns the user and a new TokenPair.
func (s *UserService) Login(ctx context.Context, userName, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same work as a real check
			auth.VerifyPassword(password, s.getRandomSalt(), s.getRandomSalt())
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if !auth.VerifyPassword(password, user.PasswordHash, user.Salt) {
		return nil, nil, common.ErrorUnauthorized
	}
	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired. Of
// two concurrent refreshes with one token, only the one whose delete removes
// the row succeeds; the other gets ErrorUnauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		deleted, err := repoTx.Delete(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if !deleted {
			return common.ErrorUnauthorized
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout forgets the refresh token. Unknown or empty tokens are fine.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// UserIDFromToken resolves an access token to the user id it was issued for.
func (s *UserService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// PurgeExpiredTokens drops refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	return n, nil
}

func (s *UserService) AccessTokenTTL() time.Duration { return s.accessTokenValidityDuration }

func (s *UserService) getRandomSalt() []byte { return common.GenerateRandByteArray(32) }

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
