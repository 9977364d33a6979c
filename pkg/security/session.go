// Package security issues and checks session tokens
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Sessions signs HS256 tokens carrying a user ID
type Sessions struct {
	secret []byte
	expiry time.Duration
}

func NewSessions(secret string, expiry time.Duration) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Expiry is how long an issued token stays valid
func (s *Sessions) Expiry() time.Duration {
	return s.expiry
}

// Issue creates a new auth token for userID
func (s *Sessions) Issue(userID string) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "auth",
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	})

	return t.SignedString(s.secret)
}

// Parse validates tokenStr and returns the user ID it was issued for
func (s *Sessions) Parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}

	if typ, _ := claims["type"].(string); typ != "auth" {
		return "", ErrTokenInvalid
	}

	if _, ok := claims["exp"]; !ok {
		return "", ErrTokenExpired
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	return userID, nil
}
