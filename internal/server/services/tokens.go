// Package services contains server-side business logic: token issuance and
// verification, account management, the subscription graph and the
// read-only profile views.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and verifies access and refresh tokens. The current
// refresh token of a user is mirrored on the user row; only that value
// verifies, so issuing a new pair invalidates the previous refresh token.
type TokenService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	clock                        clockwork.Clock
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, clock clockwork.Clock) *TokenService {
	return &TokenService{
		db:                           db,
		repomanager:                  m,
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		clock:                        clock,
	}
}

// Issue signs a new pair for userID and stores the refresh token on the user
// record, replacing any prior value.
func (s *TokenService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("User does not exist")
		}
		return nil, common.Internal(err)
	}

	now := s.clock.Now()

	access, err := auth.GenerateToken(auth.Claims{
		TokenType: auth.TokenTypeAccess,
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
	}, s.accessSecret, now, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.Internal(err)
	}

	refresh, err := auth.GenerateToken(auth.Claims{TokenType: auth.TokenTypeRefresh, UserID: user.ID}, s.refreshSecret, now, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.Internal(err)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, common.Internal(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyRefresh checks signature and expiry of token and that it equals the
// value currently stored for its user, whose record it returns. It does not
// rotate.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.Unauthorized("Unauthorized request")
	}

	claims, err := s.parse(token, s.refreshSecret, auth.TokenTypeRefresh)
	if err != nil {
		return nil, common.WrapError(common.ErrorUnauthorized, "Invalid refresh token", err)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("Invalid refresh token")
		}
		return nil, common.Internal(err)
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(token)) != 1 {
		return nil, common.Unauthorized("Refresh token is expired or used")
	}

	return user, nil
}

// VerifyAccess checks signature and expiry of an access token only.
func (s *TokenService) VerifyAccess(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, common.Unauthorized("Unauthorized request")
	}
	claims, err := s.parse(token, s.accessSecret, auth.TokenTypeAccess)
	if err != nil {
		return nil, common.WrapError(common.ErrorUnauthorized, "Invalid access token", err)
	}
	return claims, nil
}

// parse verifies token against secret at the service clock and rejects
// tokens minted for another purpose.
func (s *TokenService) parse(token string, secret []byte, tokenType string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, secret, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: %s token used as %s", common.ErrInvalidToken, claims.TokenType, tokenType)
	}
	return claims, nil
}
