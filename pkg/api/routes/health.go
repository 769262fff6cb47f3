package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/pidboard/pkg/integration"
)

const APIVersion = "v1"

func HealthRouter(router fiber.Router, pidIntegration *integration.Integration) {
	router.Get("/", func(c *fiber.Ctx) error {
		runtime, ok := pidIntegration.Runtime()
		if !ok {
			c.Status(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"version": APIVersion,
				"status":  "not_configured",
			})
		}

		response := fiber.Map{
			"version":             APIVersion,
			"status":              "ok",
			"last_update_success": runtime.Coordinator.LastUpdateSuccess(),
			"update_interval":     runtime.Coordinator.UpdateInterval().String(),
		}

		if snapshot := runtime.Coordinator.Snapshot(); snapshot != nil {
			response["updated_at"] = snapshot.UpdatedAt.Format(time.RFC3339)
		}

		if lastError := runtime.Coordinator.LastError(); lastError != nil {
			response["status"] = "degraded"
			response["last_error"] = fiber.Map{
				"error": lastError.Error(),
				"kind":  lastError.Kind,
			}
		}

		return c.JSON(response)
	})
}
