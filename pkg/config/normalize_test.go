package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStopIDs(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected []string
	}{
		{"comma separated", "U1Z1P, U2Z1P ,,U1Z1P", []string{"U1Z1P", "U2Z1P"}},
		{"list", []string{" U2Z1P", "U1Z1P", "U2Z1P", ""}, []string{"U2Z1P", "U1Z1P"}},
		{"decoded list", []any{"U1Z1P", 7, " U3Z2P "}, []string{"U1Z1P", "U3Z2P"}},
		{"empty string", "", []string{}},
		{"only separators", " , ,", []string{}},
		{"nil", nil, []string{}},
		{"unsupported", 42, []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizeStopIDs(test.raw))
		})
	}
}

func TestNormalizeStopIDsIdempotent(t *testing.T) {
	inputs := []any{
		"U1Z1P,U2Z1P,U1Z1P",
		[]string{"a", " b", "a ", "c"},
		"",
	}

	for _, input := range inputs {
		once := NormalizeStopIDs(input)
		assert.Equal(t, once, NormalizeStopIDs(once))
	}
}
