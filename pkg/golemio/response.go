package golemio

import "encoding/json"

// DepartureBoardResponse keeps the three collections of the departure board as loosely typed values.
// Entries are usually JSON objects but nothing here guarantees it.
type DepartureBoardResponse struct {
	Stops      []any `json:"stops"`
	Departures []any `json:"departures"`
	Infotexts  []any `json:"infotexts"`
}

// UnmarshalJSON decodes each collection on its own so a collection of the wrong shape is dropped
// instead of failing the whole response.
func (r *DepartureBoardResponse) UnmarshalJSON(data []byte) error {
	var collections map[string]json.RawMessage
	if err := json.Unmarshal(data, &collections); err != nil {
		return err
	}

	r.Stops = decodeCollection(collections["stops"])
	r.Departures = decodeCollection(collections["departures"])
	r.Infotexts = decodeCollection(collections["infotexts"])

	return nil
}

func decodeCollection(raw json.RawMessage) []any {
	if len(raw) == 0 {
		return nil
	}

	var collection []any
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil
	}

	return collection
}

type stopsResponse struct {
	Features []struct {
		Properties struct {
			StopID string `json:"stop_id"`
		} `json:"properties"`
	} `json:"features"`
}
