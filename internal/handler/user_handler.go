package handler

import (
	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(users),
		"data":    users,
	})
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, user, "")
}

// CreateUser registers a password account
// POST /api/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, user.ToResponse(), "User created successfully")
}

// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateUser(id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, user.ToResponse(), "User updated successfully")
}

// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	if err := h.userService.DeleteUser(id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "User deleted successfully"})
}
