package config

import (
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

const (
	Domain     = "pid_departure_board"
	EntryTitle = "PID Departure Board"
)

// EntryData is written once by the setup step
type EntryData struct {
	APIKey  string   `yaml:"api_key" json:"api_key"`
	StopIDs []string `yaml:"stop_ids" json:"stop_ids"`
}

// EntryOptions is written by the options step and replaces the matching data fields
type EntryOptions struct {
	StopIDs       []string `yaml:"stop_ids,omitempty" json:"stop_ids,omitempty"`
	MinutesBefore *int     `yaml:"minutes_before,omitempty" json:"minutes_before,omitempty"`
	MinutesAfter  *int     `yaml:"minutes_after,omitempty" json:"minutes_after,omitempty"`
}

// Entry is the persisted configuration of one integration instance
type Entry struct {
	Title   string       `yaml:"title" json:"title"`
	Data    EntryData    `yaml:"data" json:"data"`
	Options EntryOptions `yaml:"options" json:"options"`
}

// RuntimeData is the effective configuration the integration runs with
type RuntimeData struct {
	APIKey        string
	StopIDs       []string
	MinutesBefore int
	MinutesAfter  int
}

// RuntimeData overlays the options that have been set on top of the setup data
func (e Entry) RuntimeData() RuntimeData {
	runtimeData := RuntimeData{
		MinutesBefore: DefaultMinutesBefore,
		MinutesAfter:  DefaultMinutesAfter,
	}

	if err := copier.CopyWithOption(&runtimeData, e.Data, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy configuration entry data")
	}

	options := e.Options
	if len(options.StopIDs) == 0 {
		options.StopIDs = nil
	} else {
		// copier merges slices element by element
		runtimeData.StopIDs = nil
	}
	if err := copier.CopyWithOption(&runtimeData, options, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy configuration entry options")
	}

	runtimeData.StopIDs = NormalizeStopIDs(runtimeData.StopIDs)

	return runtimeData
}
