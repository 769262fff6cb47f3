package util

import "strings"

// RemoveDuplicateStrings trims each item and keeps the first occurrence of every non-empty value.
// Anything in ignoreList is dropped.
func RemoveDuplicateStrings(items []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	list := []string{}

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range items {
		item = strings.TrimSpace(item)

		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}

// RedactString keeps the last visible characters of s and masks the rest
func RedactString(s string, visible int) string {
	if len(s) <= visible {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-visible) + s[len(s)-visible:]
}
