package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/socialorchestrator/api/internal/models"
)

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("user_id").(string)
	return uuid.Parse(raw)
}

// writeError maps an application error to a structured JSON payload. Raw
// internals never reach the client.
func writeError(c *fiber.Ctx, err error) error {
	var ae *models.AppError
	if !errors.As(err, &ae) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	var status int
	switch ae.Kind {
	case models.KindUnauthenticated:
		status = fiber.StatusUnauthorized
	case models.KindForbidden:
		status = fiber.StatusForbidden
	case models.KindNotFound:
		status = fiber.StatusNotFound
	case models.KindValidation:
		status = fiber.StatusBadRequest
	case models.KindStateToken:
		status = fiber.StatusBadRequest
	case models.KindProviderConfig:
		status = fiber.StatusServiceUnavailable
	default:
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{"error": ae.Message})
}
