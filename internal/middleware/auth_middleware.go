package middleware

import (
	"strings"

	"shopmall-api/internal/model"
	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth validates the bearer token and sets the caller in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		return authenticate(c, auth, parts[1])
	}
}

// RequireSocketAuth reads the token from ?token= since browsers cannot set
// headers on a websocket upgrade
func RequireSocketAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return unauthorized(c, "Missing authorization token")
		}
		return authenticate(c, auth, token)
	}
}

func authenticate(c *fiber.Ctx, auth service.AuthService, token string) error {
	claims, err := auth.Verify(token)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	// Role and name come from the stored user, not the token
	user, err := auth.CurrentUser(claims.UserID)
	if err != nil {
		return unauthorized(c, "User not found")
	}

	c.Locals("user_id", user.ID.String())
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.Name)
	c.Locals("user_role", string(user.Role))

	return c.Next()
}

// RequireAdmin must run after RequireAuth
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("user_role").(string); role != string(model.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Forbidden: admin role required",
			})
		}
		return c.Next()
	}
}

// CurrentCaller rebuilds the caller from the locals set by RequireAuth.
// Unauthenticated requests get the zero Caller.
func CurrentCaller(c *fiber.Ctx) service.Caller {
	var caller service.Caller
	if raw, ok := c.Locals("user_id").(string); ok {
		caller.ID, _ = uuid.Parse(raw)
	}
	caller.Email, _ = c.Locals("user_email").(string)
	caller.Name, _ = c.Locals("user_name").(string)
	if role, ok := c.Locals("user_role").(string); ok {
		caller.Role = model.Role(role)
	}
	return caller
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
