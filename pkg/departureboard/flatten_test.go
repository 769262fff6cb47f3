package departureboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected Record
	}{
		{
			name:     "nested",
			record:   Record{"a": map[string]any{"b": map[string]any{"c": 1}}},
			expected: Record{"a_b_c": 1},
		},
		{
			name:     "flat",
			record:   Record{"a": 1, "b": "two", "c": nil},
			expected: Record{"a": 1, "b": "two", "c": nil},
		},
		{
			name: "departure",
			record: Record{
				"departure_timestamp": map[string]any{"predicted": "X", "aimed": "Y"},
				"route":               map[string]any{"short_name": "9"},
				"trip":                map[string]any{"is_canceled": false},
			},
			expected: Record{
				"departure_timestamp_predicted": "X",
				"departure_timestamp_aimed":     "Y",
				"route_short_name":              "9",
				"trip_is_canceled":              false,
			},
		},
		{
			name:     "lists pass through",
			record:   Record{"delay": map[string]any{"minutes": []any{1, 2}}},
			expected: Record{"delay_minutes": []any{1, 2}},
		},
		{
			name:     "empty nested object",
			record:   Record{"a": map[string]any{}, "b": 1},
			expected: Record{"b": 1},
		},
		{
			name:     "empty",
			record:   Record{},
			expected: Record{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Flatten(test.record))
		})
	}
}

func TestFlattenIsIdempotent(t *testing.T) {
	record := Record{"a": map[string]any{"b": map[string]any{"c": 1}}, "d": "e"}

	once := Flatten(record)
	assert.Equal(t, once, Flatten(once))
}
