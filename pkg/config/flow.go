package config

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// StopLookup resolves which stop ids exist upstream
type StopLookup interface {
	FetchKnownStops(ctx context.Context, stopIDs []string) (map[string]bool, error)
}

// StopLookupFactory builds a StopLookup authenticated with apiKey
type StopLookupFactory func(apiKey string) StopLookup

// SetupInput is the form submitted when an entry is first created
type SetupInput struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	StopIDs any    `json:"stop_ids" yaml:"stop_ids"`
}

// OptionsInput is the form submitted when editing an entry. Nil window values keep the current ones.
type OptionsInput struct {
	StopIDs       any `json:"stop_ids" yaml:"stop_ids"`
	MinutesBefore any `json:"minutes_before" yaml:"minutes_before"`
	MinutesAfter  any `json:"minutes_after" yaml:"minutes_after"`
}

// Flow validates configuration forms. Stop ids are checked against the upstream stop list when
// NewLookup is set.
type Flow struct {
	NewLookup StopLookupFactory

	// NewOptionsLookup replaces NewLookup in the options step, where the api key has already been
	// accepted once, usually a cached lookup.
	NewOptionsLookup StopLookupFactory
}

// Setup validates the setup form and returns the entry to persist
func (f Flow) Setup(ctx context.Context, input SetupInput) (Entry, FormErrors) {
	errors := FormErrors{}

	apiKey := strings.TrimSpace(input.APIKey)
	if apiKey == "" {
		errors[FieldAPIKey] = ErrorMissingAPIKey
	}

	stopIDs := NormalizeStopIDs(input.StopIDs)
	if len(stopIDs) == 0 {
		errors[FieldStopIDs] = ErrorInvalidStopIDs
	}

	if len(errors) == 0 {
		errors.merge(checkKnownStops(ctx, f.NewLookup, apiKey, stopIDs))
	}

	if len(errors) > 0 {
		return Entry{}, errors
	}

	return Entry{
		Title: EntryTitle,
		Data: EntryData{
			APIKey:  apiKey,
			StopIDs: stopIDs,
		},
	}, nil
}

// Options validates the options form against the current entry and returns the options to persist
func (f Flow) Options(ctx context.Context, entry Entry, input OptionsInput) (EntryOptions, FormErrors) {
	current := entry.RuntimeData()

	minutesBefore := input.MinutesBefore
	if minutesBefore == nil {
		minutesBefore = current.MinutesBefore
	}
	minutesAfter := input.MinutesAfter
	if minutesAfter == nil {
		minutesAfter = current.MinutesAfter
	}

	errors := FormErrors{}
	errors.merge(ValidateWindow(minutesBefore, minutesAfter))

	stopIDs := current.StopIDs
	if input.StopIDs != nil {
		stopIDs = NormalizeStopIDs(input.StopIDs)
	}
	if len(stopIDs) == 0 {
		errors[FieldStopIDs] = ErrorInvalidStopIDs
	}

	if len(errors) == 0 {
		newLookup := f.NewOptionsLookup
		if newLookup == nil {
			newLookup = f.NewLookup
		}
		errors.merge(checkKnownStops(ctx, newLookup, current.APIKey, stopIDs))
	}

	if len(errors) > 0 {
		return EntryOptions{}, errors
	}

	before, _ := CoerceMinutes(minutesBefore)
	after, _ := CoerceMinutes(minutesAfter)

	return EntryOptions{
		StopIDs:       stopIDs,
		MinutesBefore: &before,
		MinutesAfter:  &after,
	}, nil
}

func checkKnownStops(ctx context.Context, newLookup StopLookupFactory, apiKey string, stopIDs []string) FormErrors {
	if newLookup == nil {
		return nil
	}

	knownStops, err := newLookup(apiKey).FetchKnownStops(ctx, stopIDs)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to validate stop ids")

		if ClassifyUpstreamError(err) == ErrorInvalidAuth {
			return FormErrors{FieldBase: ErrorInvalidAuth}
		}
		return FormErrors{FieldBase: ErrorCannotConnect}
	}

	for _, stopID := range stopIDs {
		if !knownStops[stopID] {
			log.Debug().Str("stopid", stopID).Msg("Unknown stop id")
			return FormErrors{FieldStopIDs: ErrorInvalidStopIDs}
		}
	}

	return nil
}
