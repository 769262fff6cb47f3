package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/coordinator"
	"github.com/travigo/pidboard/pkg/integration"
	"github.com/travigo/pidboard/pkg/util"
)

func ConfigRouter(router fiber.Router, store *config.EntryStore, flow config.Flow, pidIntegration *integration.Integration) {
	router.Get("/", func(c *fiber.Ctx) error {
		entry, ok := store.Entry()
		if !ok {
			return sendError(c, fiber.StatusNotFound, config.ErrNoEntry)
		}

		entry.Data.APIKey = util.RedactString(entry.Data.APIKey, 4)
		data := entry.RuntimeData()

		return c.JSON(fiber.Map{
			"title":   entry.Title,
			"data":    entry.Data,
			"options": entry.Options,
			"effective": fiber.Map{
				"stop_ids":       data.StopIDs,
				"minutes_before": data.MinutesBefore,
				"minutes_after":  data.MinutesAfter,
			},
		})
	})

	router.Post("/setup", func(c *fiber.Ctx) error {
		if _, exists := store.Entry(); exists {
			return sendError(c, fiber.StatusConflict, errors.New("A configuration entry already exists"))
		}

		var input config.SetupInput
		if err := c.BodyParser(&input); err != nil {
			return sendError(c, fiber.StatusBadRequest, err)
		}

		entry, formErrors := flow.Setup(c.UserContext(), input)
		if formErrors != nil {
			return sendFormErrors(c, formErrors)
		}

		// Only persist an entry the integration could be set up with
		if err := pidIntegration.Setup(c.UserContext(), entry); err != nil {
			var updateFailed *coordinator.UpdateFailedError
			if errors.As(err, &updateFailed) {
				return sendFormErrors(c, config.FormErrors{config.FieldBase: baseErrorKind(updateFailed.Kind)})
			}
			if errors.Is(err, integration.ErrAlreadySetUp) {
				return sendError(c, fiber.StatusConflict, err)
			}
			return sendError(c, fiber.StatusInternalServerError, err)
		}

		if err := store.Create(entry); err != nil {
			log.Error().Err(err).Msg("Failed to persist configuration entry")
			pidIntegration.Unload()
			return sendError(c, fiber.StatusInternalServerError, err)
		}

		c.Status(fiber.StatusCreated)
		return c.JSON(fiber.Map{
			"title":    entry.Title,
			"stop_ids": entry.Data.StopIDs,
		})
	})

	router.Post("/options", func(c *fiber.Ctx) error {
		entry, ok := store.Entry()
		if !ok {
			return sendError(c, fiber.StatusNotFound, config.ErrNoEntry)
		}

		var input config.OptionsInput
		if err := c.BodyParser(&input); err != nil {
			return sendError(c, fiber.StatusBadRequest, err)
		}

		options, formErrors := flow.Options(c.UserContext(), entry, input)
		if formErrors != nil {
			return sendFormErrors(c, formErrors)
		}

		// Update listeners reload the integration. The options are saved even when the reload fails,
		// and the reload is retried in the background.
		if err := store.UpdateOptions(c.UserContext(), options); err != nil {
			var updateFailed *coordinator.UpdateFailedError
			if !errors.As(err, &updateFailed) {
				return sendRefreshError(c, err)
			}

			c.Status(fiber.StatusAccepted)
			return c.JSON(fiber.Map{
				"options": options,
				"reload_error": fiber.Map{
					"error": updateFailed.Error(),
					"kind":  updateFailed.Kind,
				},
			})
		}

		return c.JSON(fiber.Map{
			"options": options,
		})
	})
}

// Poll failures other than a rejected key read as a connection problem on a form
func baseErrorKind(kind config.ErrorKind) config.ErrorKind {
	if kind == config.ErrorInvalidAuth {
		return kind
	}

	return config.ErrorCannotConnect
}
