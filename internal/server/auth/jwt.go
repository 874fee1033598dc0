// Package auth signs and parses the HS256 JWTs used for access and refresh
// tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carries the registered claims plus the user identity. Access tokens
// fill in the profile fields; refresh tokens carry only UserID. TokenType
// keeps the two kinds apart even when they share a secret.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
	UserID    string `json:"_id"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"fullName,omitempty"`
}

// GenerateToken signs claims with secretKey. IssuedAt, ExpiresAt and a random
// ID are set from issuedAt and validityDuration, so two tokens minted for the
// same user in the same second still differ.
func GenerateToken(claims Claims, secretKey []byte, issuedAt time.Time, validityDuration time.Duration) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(validityDuration))
	claims.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString. Expired tokens
// yield common.ErrTokenExpired; every other failure wraps
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}

	opts = append([]jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}, opts...)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
