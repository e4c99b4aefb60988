package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"filegate/internal/auth"
)

// IdentityLocalKey is the key under which the verified caller identity is
// stored in Fiber's context locals.
const IdentityLocalKey = "auth_identity"

// RequireAuth verifies the Authorization bearer token on every request and
// stores the resulting identity in context locals. Verification runs per
// request; nothing is cached, so a token revoked or expired upstream fails on
// its next use. Failure responses distinguish an expired session from a
// missing or malformed token so clients can branch their UI behavior.
func RequireAuth(verifier auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return writeAuthError(c, "AUTH_REQUIRED", "authorization token is required")
		}

		identity, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				return writeAuthError(c, "SESSION_EXPIRED", "session has expired, please sign in again")
			case errors.Is(err, auth.ErrTokenMissing):
				return writeAuthError(c, "AUTH_REQUIRED", "authorization token is required")
			default:
				return writeAuthError(c, "INVALID_TOKEN", "authorization token is invalid")
			}
		}

		c.Locals(IdentityLocalKey, identity)
		return c.Next()
	}
}

// IdentityFromCtx returns the verified identity stored by RequireAuth.
func IdentityFromCtx(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(auth.Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func writeAuthError(c *fiber.Ctx, code, message string) error {
	body := fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	}
	if id, ok := c.Locals(RequestIDLocalKey).(string); ok && id != "" {
		body["request_id"] = id
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
