package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/travigo/pidboard/pkg/api/routes"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/integration"
	"github.com/travigo/pidboard/pkg/metrics"
)

// Server is the HTTP surface of the integration: its sensors, configuration forms and metrics
type Server struct {
	Integration *integration.Integration
	Store       *config.EntryStore
	Flow        config.Flow

	// Metrics is optional
	Metrics *metrics.Collector
}

func NewApp(server Server) *fiber.App {
	webApp := fiber.New(fiber.Config{
		AppName:               "pidboard",
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	routes.HealthRouter(webApp.Group("/health"), server.Integration)
	routes.SensorsRouter(webApp.Group("/sensors"), server.Integration)
	routes.SnapshotRouter(webApp, server.Integration)
	routes.ConfigRouter(webApp.Group("/config"), server.Store, server.Flow, server.Integration)

	if server.Metrics != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(server.Metrics.Handler()))
	}

	return webApp
}
