// internal/auth/service.go

package auth

import (
	"errors"
	"time"

	"github.com/coexist-app/coexist-backend/internal/common/utils"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Service validates bearer tokens for requests and issues them for tooling
// and tests. Account creation and credentials live with the external
// identity provider; this service only understands its HS256 tokens.
type Service interface {
	ValidateToken(tokenString string) (*utils.JWTClaims, error)
	IssueAccessToken(userID, email string) (string, error)
}

type service struct {
	secret       string
	accessExpiry time.Duration
}

func NewService(secret string, accessExpiry time.Duration) Service {
	return &service{secret: secret, accessExpiry: accessExpiry}
}

func (s *service) ValidateToken(tokenString string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(tokenString, s.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) IssueAccessToken(userID, email string) (string, error) {
	now := time.Now()
	return utils.GenerateJWT(&utils.JWTClaims{
		UserID:    userID,
		Email:     email,
		Type:      "access",
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(s.accessExpiry).Unix(),
		Issuer:    "coexist-backend",
		Subject:   userID,
	}, s.secret)
}
