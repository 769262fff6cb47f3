package departureboard

import (
	"github.com/travigo/pidboard/pkg/golemio"
)

// Reshape groups the flat departure board response by requested stop id. Every requested stop gets
// exactly one record, with a placeholder descriptor when the response does not mention it. Records
// for stops that were not requested and malformed entries are dropped.
func Reshape(raw *golemio.DepartureBoardResponse, requested []string) *Snapshot {
	snapshot := &Snapshot{
		StopIDs: make([]string, 0, len(requested)),
		Stops:   make(map[string]*StopRecord, len(requested)),
	}

	for _, stopID := range requested {
		if _, exists := snapshot.Stops[stopID]; exists {
			continue
		}

		snapshot.StopIDs = append(snapshot.StopIDs, stopID)
		snapshot.Stops[stopID] = &StopRecord{
			StopID:     stopID,
			Stop:       placeholderStop(stopID),
			Departures: []Record{},
			Infotexts:  []Record{},
		}
	}

	if raw == nil {
		return snapshot
	}

	for _, item := range raw.Stops {
		stop, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if record, ok := snapshot.Stops[stringValue(stop["stop_id"])]; ok {
			record.Stop = stop
		}
	}

	for _, item := range raw.Departures {
		departure, ok := item.(map[string]any)
		if !ok {
			continue
		}

		stopRef, ok := departure["stop"].(map[string]any)
		if !ok {
			continue
		}

		if record, ok := snapshot.Stops[stringValue(stopRef["id"])]; ok {
			record.Departures = append(record.Departures, departure)
		}
	}

	for _, item := range raw.Infotexts {
		infotext, ok := item.(map[string]any)
		if !ok {
			continue
		}

		relatedStops, ok := infotext["related_stops"].([]any)
		if !ok {
			continue
		}

		// An infotext may list the same stop more than once
		attached := map[string]bool{}
		for _, related := range relatedStops {
			stopID := relatedStopID(related)
			if attached[stopID] {
				continue
			}

			if record, ok := snapshot.Stops[stopID]; ok {
				record.Infotexts = append(record.Infotexts, infotext)
				attached[stopID] = true
			}
		}
	}

	return snapshot
}

func relatedStopID(related any) string {
	switch value := related.(type) {
	case string:
		return value
	case map[string]any:
		if id := stringValue(value["id"]); id != "" {
			return id
		}
		return stringValue(value["stop_id"])
	}

	return ""
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}
