package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/pidboard/pkg/integration"
)

func SnapshotRouter(router fiber.Router, pidIntegration *integration.Integration) {
	router.Get("/snapshot", func(c *fiber.Ctx) error {
		runtime, ok := pidIntegration.Runtime()
		if !ok {
			return sendError(c, fiber.StatusServiceUnavailable, integration.ErrNotSetUp)
		}

		return c.JSON(runtime.Coordinator.Snapshot())
	})

	router.Post("/refresh", func(c *fiber.Ctx) error {
		if err := pidIntegration.Refresh(c.UserContext()); err != nil {
			return sendRefreshError(c, err)
		}

		runtime, ok := pidIntegration.Runtime()
		if !ok {
			return sendError(c, fiber.StatusServiceUnavailable, integration.ErrNotSetUp)
		}

		return c.JSON(fiber.Map{
			"updated_at": runtime.Coordinator.Snapshot().UpdatedAt,
		})
	})
}
