package departureboard

import (
	"strings"
	"time"
)

// Layouts accepted for departure timestamps. Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), true
		}
	}

	return time.Time{}, false
}

// DepartureTime returns the predicted departure time of a departure, or the aimed one when no
// prediction is published
func DepartureTime(departure Record) (time.Time, bool) {
	timestamps, ok := departure["departure_timestamp"].(map[string]any)
	if !ok {
		return time.Time{}, false
	}

	value := stringValue(timestamps["predicted"])
	if value == "" {
		value = stringValue(timestamps["aimed"])
	}

	return ParseTimestamp(value)
}

// EarliestDeparture returns the soonest departure time of the stop in UTC
func EarliestDeparture(stop *StopRecord) (time.Time, bool) {
	var earliest time.Time
	found := false

	if stop == nil {
		return earliest, found
	}

	for _, departure := range stop.Departures {
		departureTime, ok := DepartureTime(departure)
		if !ok {
			continue
		}

		if !found || departureTime.Before(earliest) {
			earliest = departureTime
			found = true
		}
	}

	return earliest, found
}

func Attributes(stop *StopRecord) map[string]any {
	departures := make([]Record, 0, len(stop.Departures))
	for _, departure := range stop.Departures {
		departures = append(departures, Flatten(departure))
	}

	infotexts := stop.Infotexts
	if infotexts == nil {
		infotexts = []Record{}
	}

	return map[string]any{
		"stop_name":  stop.StopName(),
		"departures": departures,
		"infotexts":  infotexts,
	}
}
