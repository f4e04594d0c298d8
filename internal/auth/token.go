// Package auth émet les jetons d'accès au back-office.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrMissingSecret = errors.New("auth: JWT_SECRET manquant")

// Claims lus par middleware.AuthRequired
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// IssueToken signe un jeton HS256 avec exp
func IssueToken(secret []byte, c Claims, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	claims := jwt.MapClaims{
		"user_id": c.UserID,
		"role":    c.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if c.Email != "" {
		claims["email"] = c.Email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
