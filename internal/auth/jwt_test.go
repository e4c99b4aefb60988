package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, sub string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: "student@example.edu",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_Verify(t *testing.T) {
	const secret = "test-secret"
	v, err := NewJWTVerifier(secret)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		id, err := v.Verify(ctx, signToken(t, secret, "user-1", time.Minute))
		assert.NoError(t, err)
		assert.Equal(t, "user-1", id.ID)
		assert.Equal(t, "student@example.edu", id.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := v.Verify(ctx, signToken(t, secret, "user-1", -time.Minute))
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(ctx, signToken(t, "other-secret", "user-1", time.Minute))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := v.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrTokenMissing)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := v.Verify(ctx, signToken(t, secret, "", time.Minute))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.Error(t, err)
}
