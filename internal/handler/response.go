package handler

import (
	"errors"
	"strings"

	"shopmall-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func respondList(c *fiber.Ctx, data interface{}, count int, total int64, page service.Pagination) error {
	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
		"total":   total,
		"page":    page.Page,
		"pages":   page.Pages(total),
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func invalidJSON(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid JSON")
}

// statusOf maps a service error onto the HTTP status it is reported with
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrDuplicateKey),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrAccountConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUpstreamVerification):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// writeError renders err in the error envelope. Unknown errors are 500 with
// the raw text in message.
func writeError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status != fiber.StatusInternalServerError || errors.Is(err, service.ErrProviderNotConfigured) {
		return fail(c, status, err.Error())
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   "internal server error",
		"message": err.Error(),
	})
}

// ErrorHandler renders framework errors (unknown route, oversized body, panics
// turned into errors) in the same envelope.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
			if code == fiber.StatusRequestEntityTooLarge {
				msg = strings.ToLower(fe.Message)
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return fail(c, code, msg)
	}
}
