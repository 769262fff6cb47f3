package api

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/integration"
	"github.com/travigo/pidboard/pkg/metrics"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "poll the departure boards and serve the sensors over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen target for the web server, overrides the settings file",
			},
		},
		Action: func(c *cli.Context) error {
			settings, err := config.LoadSettings(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("listen") {
				settings.Listen = c.String("listen")
			}

			if err := integration.ConnectRedis(); err != nil {
				return err
			}

			store, err := config.OpenEntryStore(settings.EntryFile)
			if err != nil {
				return err
			}

			var collector *metrics.Collector
			if settings.Metrics {
				collector = metrics.NewCollector()
			}

			deps, closeDeps, err := integration.NewDependencies(settings, http.DefaultClient, collector)
			if err != nil {
				return err
			}
			defer closeDeps()

			pidIntegration := integration.New(deps)
			defer pidIntegration.Listen(store)()

			if collector != nil {
				collector.SetUpdateInterval(pidIntegration.UpdateInterval())
			}

			if entry, ok := store.Entry(); ok {
				// Transient upstream failures are retried in the background
				if err := pidIntegration.Reload(c.Context, entry); err != nil {
					log.Error().Err(err).Msg("Failed to set up departure board integration")
				}
			} else {
				log.Warn().Str("file", store.Path()).Msg("No configuration entry, waiting for setup")
			}

			webApp := NewApp(Server{
				Integration: pidIntegration,
				Store:       store,
				Flow:        integration.NewFlow(settings, http.DefaultClient),
				Metrics:     collector,
			})

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)

			var wg conc.WaitGroup
			serverErrors := make(chan error, 1)

			wg.Go(func() {
				log.Info().Str("listen", settings.Listen).Msg("Starting web server")
				serverErrors <- webApp.Listen(settings.Listen)
			})

			select {
			case <-signals:
				log.Info().Msg("Shutting down")
			case err = <-serverErrors:
			}

			if shutdownErr := webApp.Shutdown(); shutdownErr != nil {
				log.Error().Err(shutdownErr).Msg("Failed to shut down web server")
			}
			if unloadErr := pidIntegration.Unload(); unloadErr != nil && !errors.Is(unloadErr, integration.ErrNotSetUp) {
				log.Error().Err(unloadErr).Msg("Failed to unload integration")
			}

			wg.Wait()

			return err
		},
	}
}
