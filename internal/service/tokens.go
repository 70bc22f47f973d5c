package service

import (
	"errors"
	"time"

	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Access and refresh tokens are signed with distinct secrets and carry
// different payloads: access tokens embed display fields for the
// middleware, refresh tokens carry only the user id.

func (s *AuthService) issueAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"fullName": user.FullName,
		"exp":      time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AccessTokenSecret))
}

func (s *AuthService) issueRefreshToken(user *domain.User) (string, error) {
	// jti makes every issued token distinct even within the same
	// second, so rotation always produces a new value.
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": uuid.NewString(),
		"exp": time.Now().Add(s.cfg.RefreshTokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.RefreshTokenSecret))
}

// ValidateAccessToken parses and verifies an access token, returning
// its claims. Used by the auth middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*jwt.MapClaims, error) {
	return s.parseToken(tokenString, s.cfg.AccessTokenSecret)
}

// verifyRefreshToken checks signature and expiry against the refresh
// secret and extracts the user id. Equality with the stored token is
// checked separately by Refresh.
func (s *AuthService) verifyRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parseToken(tokenString, s.cfg.RefreshTokenSecret)
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := (*claims)["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

func (s *AuthService) parseToken(tokenString, secret string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}
