package config

import (
	"strings"

	"github.com/travigo/pidboard/pkg/util"
)

// NormalizeStopIDs accepts a list of stop ids or a single comma separated string.
// Values are trimmed, empty values dropped and duplicates removed keeping the first occurrence.
func NormalizeStopIDs(raw any) []string {
	switch value := raw.(type) {
	case string:
		return util.RemoveDuplicateStrings(strings.Split(value, ","), nil)
	case []string:
		return util.RemoveDuplicateStrings(value, nil)
	case []any:
		var items []string
		for _, item := range value {
			if itemString, ok := item.(string); ok {
				items = append(items, itemString)
			}
		}

		return util.RemoveDuplicateStrings(items, nil)
	default:
		return []string{}
	}
}
