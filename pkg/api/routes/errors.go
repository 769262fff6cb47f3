package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/coordinator"
	"github.com/travigo/pidboard/pkg/integration"
)

func sendError(c *fiber.Ctx, status int, err error) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}

// sendRefreshError maps a failed refresh onto a response
func sendRefreshError(c *fiber.Ctx, err error) error {
	var updateFailed *coordinator.UpdateFailedError

	switch {
	case errors.Is(err, integration.ErrNotSetUp), errors.Is(err, coordinator.ErrStopped):
		return sendError(c, fiber.StatusServiceUnavailable, err)
	case errors.As(err, &updateFailed):
		c.Status(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": updateFailed.Error(),
			"kind":  updateFailed.Kind,
		})
	default:
		return sendError(c, fiber.StatusInternalServerError, err)
	}
}

func sendFormErrors(c *fiber.Ctx, formErrors config.FormErrors) error {
	c.Status(fiber.StatusBadRequest)
	return c.JSON(fiber.Map{
		"errors": formErrors,
	})
}
