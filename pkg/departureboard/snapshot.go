package departureboard

import "time"

// Record is one loosely typed upstream object (stop descriptor, departure or infotext)
type Record = map[string]any

type StopRecord struct {
	StopID     string   `json:"stop_id"`
	Stop       Record   `json:"stop"`
	Departures []Record `json:"departures"`
	Infotexts  []Record `json:"infotexts"`
}

// StopName returns the display name of the stop, falling back to its id
func (s *StopRecord) StopName() string {
	if name, ok := s.Stop["stop_name"].(string); ok && name != "" {
		return name
	}

	return s.StopID
}

// Snapshot is the reshaped departure board for every requested stop. A snapshot is never modified
// once it has been published.
type Snapshot struct {
	StopIDs   []string               `json:"stop_ids"`
	Stops     map[string]*StopRecord `json:"stops"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (s *Snapshot) Stop(stopID string) (*StopRecord, bool) {
	if s == nil {
		return nil, false
	}

	record, ok := s.Stops[stopID]
	return record, ok
}

// Records returns the stop records in the order the stops were requested
func (s *Snapshot) Records() []*StopRecord {
	if s == nil {
		return nil
	}

	records := make([]*StopRecord, 0, len(s.StopIDs))
	for _, stopID := range s.StopIDs {
		records = append(records, s.Stops[stopID])
	}

	return records
}

func placeholderStop(stopID string) Record {
	return Record{
		"stop_id":   stopID,
		"stop_name": stopID,
	}
}
