// Package identity supplies the authenticated owner id the rest of the system
// trusts: registration, login and the token round-trip. Nothing below this
// package re-authenticates; stores receive the owner id as an explicit
// parameter on every call.
package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// NewToken issues an HS256 token for a logged-in user with sub and email
// claims and the given lifetime.
func NewToken(user core.User, secret string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = user.ID
	claims["email"] = user.Email
	claims["exp"] = time.Now().Add(ttl).Unix()

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseOwnerID verifies a token and extracts the owner id from its sub claim.
func ParseOwnerID(tokenString, secret string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	// MapClaims decodes JSON numbers as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, fmt.Errorf("invalid token subject")
	}
	return int64(sub), nil
}
