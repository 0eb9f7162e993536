// Package security implements JWT validation for the API layer. The
// ledger itself never sees tokens, only the resolved actor reference.
package security

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"stockledger/internal/core/apperror"
	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
)

// Claims are the token claims the ledger API cares about. The subject
// is the actor ID recorded on journal entries.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates HMAC-signed tokens.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator with the shared secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken parses and validates a token, returning the actor it
// identifies.
func (v *JWTValidator) ValidateToken(tokenString string) (*appctx.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}

	actorID, err := id.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token subject")
	}

	return &appctx.Actor{
		ID:    actorID,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
