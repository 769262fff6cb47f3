package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/pidboard/pkg/departureboard"
	"github.com/travigo/pidboard/pkg/integration"
)

func SensorsRouter(router fiber.Router, pidIntegration *integration.Integration) {
	router.Get("/", func(c *fiber.Ctx) error {
		groups, err := detailGroups(c.Query("detail", "detailed"))
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, err)
		}

		states := []departureboard.SensorState{}
		for _, sensor := range pidIntegration.Sensors() {
			states = append(states, departureboard.StateOf(sensor))
		}

		statesReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: groups,
		}, states)
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, errors.New("Sherrif could not reduce sensor states"))
		}

		return c.JSON(statesReduced)
	})

	router.Get("/:uniqueid", func(c *fiber.Ctx) error {
		groups, err := detailGroups(c.Query("detail", "detailed"))
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, err)
		}

		sensor, ok := pidIntegration.Sensor(c.Params("uniqueid"))
		if !ok {
			return sendError(c, fiber.StatusNotFound, errors.New("Could not find sensor matching unique id"))
		}

		stateReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: groups,
		}, departureboard.StateOf(sensor))
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, errors.New("Sherrif could not reduce sensor state"))
		}

		return c.JSON(stateReduced)
	})

	router.Post("/:uniqueid/update", func(c *fiber.Ctx) error {
		sensor, ok := pidIntegration.Sensor(c.Params("uniqueid"))
		if !ok {
			return sendError(c, fiber.StatusNotFound, errors.New("Could not find sensor matching unique id"))
		}

		if err := sensor.Update(c.UserContext()); err != nil {
			return sendRefreshError(c, err)
		}

		return c.JSON(departureboard.StateOf(sensor))
	})
}

func detailGroups(detail string) ([]string, error) {
	switch detail {
	case "basic":
		return []string{"basic"}, nil
	case "detailed":
		return []string{"basic", "detailed"}, nil
	default:
		return nil, errors.New("Parameter detail should be basic or detailed")
	}
}
