package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/api"
	"github.com/travigo/pidboard/pkg/integration"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("PIDBOARD_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("PIDBOARD_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "pidboard",
		Description: "Prague PID departure boards from the Golemio API",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file",
				Value:   "pidboard.yaml",
				EnvVars: []string{"PIDBOARD_CONFIG"},
			},
		},

		Commands: append([]*cli.Command{
			api.RegisterCLI(),
		}, integration.RegisterCLI()...),
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
