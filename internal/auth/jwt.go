package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the fields the identity provider
// places in its access tokens. The user ID travels in the standard sub claim.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTVerifier validates tokens locally using the HS256 secret shared with the
// identity provider. No network call is made per request.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a local verifier. The secret must match the identity
// provider's signing secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

var _ Verifier = (*JWTVerifier)(nil)

// Verify parses and validates the token, returning the embedded identity.
// Expired tokens map to ErrTokenExpired; any other parse or signature failure
// maps to ErrTokenInvalid.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrTokenMissing
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{ID: claims.Subject, Email: claims.Email}, nil
}
