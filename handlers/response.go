package handlers

import (
	"errors"

	"shopledger/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}

func validationFailed(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "Validation failed",
		"errors":  fields,
	})
}

// repoError maps repository sentinels to HTTP statuses. Anything else is
// logged and reported as a 500 without the internal message.
func (h *Handler) repoError(c *fiber.Ctx, err error, action string, fields ...zap.Field) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "Resource not found")
	case errors.Is(err, repository.ErrInsufficientStock):
		return errorResponse(c, fiber.StatusConflict, "Insufficient stock")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return errorResponse(c, fiber.StatusConflict, "Email is already registered")
	case errors.Is(err, repository.ErrDuplicateSlug):
		return errorResponse(c, fiber.StatusConflict, "Shop slug is already taken")
	}
	h.Log.Error(action, append(fields, zap.Error(err))...)
	return errorResponse(c, fiber.StatusInternalServerError, "Failed to "+action)
}

// ErrorHandler renders errors that escaped a handler in the API's JSON shape.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return errorResponse(c, status, message)
	}
}
