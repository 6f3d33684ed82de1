package handlers

import (
	"errors"
	"log"

	"noteful/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the application-wide fiber error handler. Rejected fields
// become the 422 validation envelope, errors that carry a status are echoed to
// the client, and anything else is logged and hidden behind a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		return validationFailed(c, fieldErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"message": fiberErr.Message,
			"error":   fiber.Map{},
		})
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal Server Error",
		"error":   fiber.Map{},
	})
}

// validationFailed writes the 422 envelope for a rejected field.
func validationFailed(c *fiber.Ctx, fieldErr *validation.FieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"code":     fiber.StatusUnprocessableEntity,
		"reason":   "ValidationError",
		"message":  fieldErr.Message,
		"location": fieldErr.Field,
	})
}
