package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/careerlens/careerlens/pkg/kernel"
)

const (
	localsUserID = "auth_user_id"
	localsEmail  = "auth_email"
	localsRole   = "auth_role"
)

// Middleware validates Bearer session tokens and stores identity in locals
func Middleware(tokens TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(localsUserID, claims.UserID)
		c.Locals(localsEmail, claims.Email)
		c.Locals(localsRole, claims.Role)

		return c.Next()
	}
}

// RequireRole rejects sessions whose role does not match
func RequireRole(role Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r, ok := c.Locals(localsRole).(Role); !ok || r != role {
			return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
		}
		return c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(c *fiber.Ctx) (kernel.UserID, bool) {
	id, ok := c.Locals(localsUserID).(kernel.UserID)
	return id, ok
}

// GetEmail extracts the authenticated email from context
func GetEmail(c *fiber.Ctx) (kernel.Email, bool) {
	email, ok := c.Locals(localsEmail).(kernel.Email)
	return email, ok
}
