package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/travigo/pidboard/pkg/golemio"
	"github.com/travigo/pidboard/pkg/util"
	"gopkg.in/yaml.v3"
)

// Settings configures the service around the integration entry
type Settings struct {
	Listen    string `yaml:"listen" validate:"required"`
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	EntryFile string `yaml:"entry_file" validate:"required"`

	// ValidateStops checks stop ids against the GTFS stop list in the configuration forms
	ValidateStops bool `yaml:"validate_stops"`

	Metrics bool `yaml:"metrics"`

	KnownStopsTTL time.Duration `yaml:"known_stops_ttl" validate:"gte=0"`

	NATS  NATSSettings  `yaml:"nats"`
	Queue QueueSettings `yaml:"queue"`
}

type NATSSettings struct {
	URL     string `yaml:"url" validate:"omitempty,url"`
	Subject string `yaml:"subject" validate:"required_with=URL"`
}

type QueueSettings struct {
	Name string `yaml:"name"`
}

func DefaultSettings() Settings {
	return Settings{
		Listen:        ":8080",
		BaseURL:       golemio.DefaultBaseURL,
		EntryFile:     "pidboard-entry.yaml",
		ValidateStops: true,
		Metrics:       true,
		KnownStopsTTL: 24 * time.Hour,
		NATS: NATSSettings{
			Subject: "pidboard.sensors",
		},
	}
}

// LoadSettings reads settings from path when it exists, then applies .env and PIDBOARD_* overrides
func LoadSettings(path string) (Settings, error) {
	// .env is optional
	_ = godotenv.Load()

	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return settings, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("parse settings file %s: %w", path, err)
			}
		}
	}

	if err := applyEnvironment(&settings); err != nil {
		return settings, err
	}

	if err := validate.Struct(settings); err != nil {
		return settings, err
	}

	return settings, nil
}

func applyEnvironment(settings *Settings) error {
	env := util.GetEnvironmentVariables()

	if env["PIDBOARD_LISTEN"] != "" {
		settings.Listen = env["PIDBOARD_LISTEN"]
	}
	if env["PIDBOARD_BASE_URL"] != "" {
		settings.BaseURL = env["PIDBOARD_BASE_URL"]
	}
	if env["PIDBOARD_ENTRY_FILE"] != "" {
		settings.EntryFile = env["PIDBOARD_ENTRY_FILE"]
	}
	if env["PIDBOARD_VALIDATE_STOPS"] != "" {
		validateStops, err := strconv.ParseBool(env["PIDBOARD_VALIDATE_STOPS"])
		if err != nil {
			return fmt.Errorf("invalid PIDBOARD_VALIDATE_STOPS: %q", env["PIDBOARD_VALIDATE_STOPS"])
		}
		settings.ValidateStops = validateStops
	}
	if env["PIDBOARD_METRICS"] != "" {
		metrics, err := strconv.ParseBool(env["PIDBOARD_METRICS"])
		if err != nil {
			return fmt.Errorf("invalid PIDBOARD_METRICS: %q", env["PIDBOARD_METRICS"])
		}
		settings.Metrics = metrics
	}
	if env["PIDBOARD_KNOWN_STOPS_TTL"] != "" {
		ttl, err := time.ParseDuration(env["PIDBOARD_KNOWN_STOPS_TTL"])
		if err != nil {
			return fmt.Errorf("invalid PIDBOARD_KNOWN_STOPS_TTL: %q", env["PIDBOARD_KNOWN_STOPS_TTL"])
		}
		settings.KnownStopsTTL = ttl
	}
	if env["PIDBOARD_NATS_URL"] != "" {
		settings.NATS.URL = env["PIDBOARD_NATS_URL"]
	}
	if env["PIDBOARD_NATS_SUBJECT"] != "" {
		settings.NATS.Subject = env["PIDBOARD_NATS_SUBJECT"]
	}
	if env["PIDBOARD_QUEUE"] != "" {
		settings.Queue.Name = env["PIDBOARD_QUEUE"]
	}

	return nil
}
