package api

import (
	"strings"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware creates a middleware that validates JWT tokens.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, "Authorization header is required")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return fail(c, fiber.StatusUnauthorized, "Invalid authorization header format. Use: Bearer <token>")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return fail(c, fiber.StatusUnauthorized, "Token is required")
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// claimsFromCtx returns the authenticated claims stored by AuthMiddleware.
func claimsFromCtx(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}
