package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"
	"github.com/travigo/pidboard/pkg/departureboard"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

type stateRow struct {
	UniqueID      string `csv:"unique_id"`
	Name          string `csv:"name"`
	Available     bool   `csv:"available"`
	NextDeparture string `csv:"next_departure"`
	Departures    int    `csv:"departures"`
	Infotexts     int    `csv:"infotexts"`
}

// WriteStates prints sensor states in one of the fetch command output formats
func WriteStates(w io.Writer, format string, states []departureboard.SensorState) error {
	switch format {
	case FormatPretty:
		_, err := pretty.Fprintf(w, "%# v\n", states)
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(states)
	case FormatCSV:
		rows := make([]*stateRow, 0, len(states))
		for _, state := range states {
			row := &stateRow{
				UniqueID:   state.UniqueID,
				Name:       state.Name,
				Available:  state.Available,
				Departures: countOf(state.ExtraStateAttributes["departures"]),
				Infotexts:  countOf(state.ExtraStateAttributes["infotexts"]),
			}
			if state.NativeValue != nil {
				row.NextDeparture = state.NativeValue.Format(time.RFC3339)
			}
			rows = append(rows, row)
		}
		return gocsv.Marshal(rows, w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func countOf(value any) int {
	if records, ok := value.([]departureboard.Record); ok {
		return len(records)
	}

	return 0
}
