package departureboard

import (
	"context"
	"fmt"
	"time"

	"github.com/travigo/pidboard/pkg/config"
)

const (
	DeviceClassTimestamp = "timestamp"
	EntryTypeService     = "service"
)

// Source is the read side of the poll coordinator that sensors depend on
type Source interface {
	Snapshot() *Snapshot
	Refresh(ctx context.Context) error
	LastUpdateSuccess() bool
}

// Sensor is an entity exposed to the host
type Sensor interface {
	Name() string
	UniqueID() string
	DeviceClass() string
	DeviceInfo() DeviceInfo
	Available() bool
	NativeValue() *time.Time
	ExtraStateAttributes() map[string]any
	Update(ctx context.Context) error
}

type DeviceIdentifier struct {
	Domain string `json:"domain" groups:"detailed"`
	ID     string `json:"id" groups:"detailed"`
}

type DeviceInfo struct {
	Identifiers []DeviceIdentifier `json:"identifiers" groups:"detailed"`
	Name        string             `json:"name" groups:"detailed"`
	EntryType   string             `json:"entry_type" groups:"detailed"`
}

// SensorState is the rendered state of a sensor
type SensorState struct {
	UniqueID    string     `json:"unique_id" groups:"basic,detailed"`
	Name        string     `json:"name" groups:"basic,detailed"`
	DeviceClass string     `json:"device_class" groups:"basic,detailed"`
	Available   bool       `json:"available" groups:"basic,detailed"`
	NativeValue *time.Time `json:"native_value" groups:"basic,detailed"`

	ExtraStateAttributes map[string]any `json:"extra_state_attributes,omitempty" groups:"detailed"`
	Device               DeviceInfo     `json:"device" groups:"detailed"`
}

func StateOf(sensor Sensor) SensorState {
	return SensorState{
		UniqueID:             sensor.UniqueID(),
		Name:                 sensor.Name(),
		DeviceClass:          sensor.DeviceClass(),
		Available:            sensor.Available(),
		NativeValue:          sensor.NativeValue(),
		ExtraStateAttributes: sensor.ExtraStateAttributes(),
		Device:               sensor.DeviceInfo(),
	}
}

// StopSensor exposes the next departure from one stop
type StopSensor struct {
	source   Source
	stopID   string
	stopName string
}

// NewStopSensor builds the sensor for stopID. The stop name is taken from the current snapshot and
// kept for the lifetime of the sensor.
func NewStopSensor(source Source, stopID string) *StopSensor {
	stopName := stopID
	if record, ok := source.Snapshot().Stop(stopID); ok {
		stopName = record.StopName()
	}

	return &StopSensor{
		source:   source,
		stopID:   stopID,
		stopName: stopName,
	}
}

func (s *StopSensor) StopID() string {
	return s.stopID
}

func (s *StopSensor) Name() string {
	return fmt.Sprintf("%s Departures", s.stopName)
}

func (s *StopSensor) UniqueID() string {
	return fmt.Sprintf("%s_departures", s.stopID)
}

func (s *StopSensor) DeviceClass() string {
	return DeviceClassTimestamp
}

func (s *StopSensor) DeviceInfo() DeviceInfo {
	return DeviceInfo{
		Identifiers: []DeviceIdentifier{{Domain: config.Domain, ID: s.stopID}},
		Name:        fmt.Sprintf("%s Stop", s.stopName),
		EntryType:   EntryTypeService,
	}
}

func (s *StopSensor) Available() bool {
	if !s.source.LastUpdateSuccess() {
		return false
	}

	_, ok := s.source.Snapshot().Stop(s.stopID)
	return ok
}

func (s *StopSensor) NativeValue() *time.Time {
	record, ok := s.source.Snapshot().Stop(s.stopID)
	if !ok {
		return nil
	}

	earliest, ok := EarliestDeparture(record)
	if !ok {
		return nil
	}

	return &earliest
}

func (s *StopSensor) ExtraStateAttributes() map[string]any {
	record, ok := s.source.Snapshot().Stop(s.stopID)
	if !ok {
		return nil
	}

	return Attributes(record)
}

// Update asks the source for fresh data, joining a refresh that is already running
func (s *StopSensor) Update(ctx context.Context) error {
	return s.source.Refresh(ctx)
}
