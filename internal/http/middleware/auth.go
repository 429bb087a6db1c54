package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"artmarket/internal/pkg/jwthelper"
)

const (
	// UserIDLocalKey holds the authenticated user's ID in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// RoleLocalKey holds the authenticated user's role.
	RoleLocalKey = "role"
)

// Auth reads an optional "Authorization: Bearer <jwt>" header. A valid token
// stores the user ID and role in locals; an invalid one is rejected with 401.
// Requests without the header continue anonymously.
func Auth(signingKey []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" {
			return c.Next()
		}
		scheme, raw, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed authorization header")
		}
		claims, err := jwthelper.ParseToken(signingKey, strings.TrimSpace(raw))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(UserIDLocalKey, claims.Subject)
		c.Locals(RoleLocalKey, claims.Role)
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid, _ := c.Locals(UserIDLocalKey).(string); uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and other roles with 403.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid, _ := c.Locals(UserIDLocalKey).(string); uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		role, _ := c.Locals(RoleLocalKey).(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}
