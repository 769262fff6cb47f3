package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/config"
	"github.com/travigo/pidboard/pkg/coordinator"
	"github.com/travigo/pidboard/pkg/departureboard"
	"github.com/travigo/pidboard/pkg/golemio"
	"github.com/travigo/pidboard/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "setup",
			Usage: "create the configuration entry from an api key and stop ids",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "api-key",
					Usage:   "Golemio API access token",
					EnvVars: []string{"PIDBOARD_API_KEY"},
				},
				&cli.StringFlag{
					Name:     "stop-ids",
					Usage:    "comma separated GTFS stop ids",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				settings, store, err := loadCLIState(c)
				if err != nil {
					return err
				}

				flow := NewFlow(settings, http.DefaultClient)
				entry, formErrors := flow.Setup(c.Context, config.SetupInput{
					APIKey:  c.String("api-key"),
					StopIDs: c.String("stop-ids"),
				})
				if formErrors != nil {
					return formErrors
				}

				if err := store.Create(entry); err != nil {
					return err
				}

				log.Info().Str("file", store.Path()).Strs("stopids", entry.Data.StopIDs).Msg("Saved configuration entry")

				return nil
			},
		},
		{
			Name:  "options",
			Usage: "change the stop ids and departure window of the configuration entry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "stop-ids",
					Usage: "comma separated GTFS stop ids",
				},
				&cli.StringFlag{
					Name:  "minutes-before",
					Usage: "include departures up to this many minutes in the past",
				},
				&cli.StringFlag{
					Name:  "minutes-after",
					Usage: "include departures up to this many minutes in the future",
				},
			},
			Action: func(c *cli.Context) error {
				settings, store, err := loadCLIState(c)
				if err != nil {
					return err
				}

				entry, ok := store.Entry()
				if !ok {
					return config.ErrNoEntry
				}

				input := config.OptionsInput{}
				if c.IsSet("stop-ids") {
					input.StopIDs = c.String("stop-ids")
				}
				if c.IsSet("minutes-before") {
					input.MinutesBefore = c.String("minutes-before")
				}
				if c.IsSet("minutes-after") {
					input.MinutesAfter = c.String("minutes-after")
				}

				flow := NewFlow(settings, http.DefaultClient)
				options, formErrors := flow.Options(c.Context, entry, input)
				if formErrors != nil {
					return formErrors
				}

				if err := store.UpdateOptions(c.Context, options); err != nil {
					return err
				}

				log.Info().Str("file", store.Path()).Msg("Saved configuration entry options")

				return nil
			},
		},
		{
			Name:  "fetch",
			Usage: "fetch the departure boards once and print the sensor states",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Value: FormatPretty,
					Usage: "output format: pretty, json or csv",
				},
			},
			Action: func(c *cli.Context) error {
				settings, store, err := loadCLIState(c)
				if err != nil {
					return err
				}

				entry, ok := store.Entry()
				if !ok {
					return config.ErrNoEntry
				}

				states, err := FetchStates(c.Context, settings, entry, http.DefaultClient)
				if err != nil {
					return err
				}

				return WriteStates(os.Stdout, c.String("format"), states)
			},
		},
	}
}

// FetchStates runs a single refresh for entry and renders the sensor states without starting a schedule
func FetchStates(ctx context.Context, settings config.Settings, entry config.Entry, httpClient *http.Client) ([]departureboard.SensorState, error) {
	data := entry.RuntimeData()

	client := golemio.NewClient(settings.BaseURL, data.APIKey, httpClient)
	departureBoardCoordinator := coordinator.New(client, coordinator.Options{
		StopIDs:       data.StopIDs,
		MinutesBefore: data.MinutesBefore,
		MinutesAfter:  data.MinutesAfter,
	})
	defer departureBoardCoordinator.Stop()

	if err := departureBoardCoordinator.FirstRefresh(ctx); err != nil {
		return nil, err
	}

	states := make([]departureboard.SensorState, 0, len(data.StopIDs))
	for _, stopID := range data.StopIDs {
		states = append(states, departureboard.StateOf(departureboard.NewStopSensor(departureBoardCoordinator, stopID)))
	}

	return states, nil
}

func loadCLIState(c *cli.Context) (config.Settings, *config.EntryStore, error) {
	settings, err := config.LoadSettings(c.String("config"))
	if err != nil {
		return settings, nil, err
	}

	if err := ConnectRedis(); err != nil {
		return settings, nil, err
	}

	store, err := config.OpenEntryStore(settings.EntryFile)
	if err != nil {
		return settings, nil, err
	}

	return settings, store, nil
}

// ConnectRedis connects to redis when it has been configured
func ConnectRedis() error {
	if !redis_client.Configured() {
		return nil
	}

	if err := redis_client.Connect(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	return nil
}
