package handler

import (
	"shopmall-api/internal/middleware"
	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles password authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, resp, "Login successful")
}

// SocialLogin signs in with google, kakao or facebook; 201 when the account is new
// POST /api/auth/social
func (h *AuthHandler) SocialLogin(c *fiber.Ctx) error {
	var req service.SocialLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	resp, created, err := h.authService.SocialLogin(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return respond(c, fiber.StatusCreated, resp, "Account created and logged in")
	}
	return respond(c, fiber.StatusOK, resp, "Login successful")
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(middleware.CurrentCaller(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, user.ToResponse(), "")
}
