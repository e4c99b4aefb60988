// Package auth verifies the bearer session tokens presented on every gateway
// call. Tokens are issued elsewhere (the portal's identity provider); the
// gateway only validates them and extracts the caller identity. Nothing is
// cached: every request is verified independently.
package auth

import (
	"context"
	"errors"
)

// Identity is the verified caller extracted from a session token.
type Identity struct {
	ID    string
	Email string
}

// Verifier turns an opaque bearer token into a verified Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Sentinel errors for the three distinguishable authentication outcomes.
// Expired tokens get their own error so callers can prompt re-authentication
// instead of treating the failure as generic.
var (
	ErrTokenMissing = errors.New("authorization token is missing")
	ErrTokenInvalid = errors.New("authorization token is invalid")
	ErrTokenExpired = errors.New("session has expired")
)
