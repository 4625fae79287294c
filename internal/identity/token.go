package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

// Claims defines the access token content the core relies on
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DecodeAccessToken validates an access token signed by the provider and
// extracts its claims. The subject claim carries the durable user id.
func DecodeAccessToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}
