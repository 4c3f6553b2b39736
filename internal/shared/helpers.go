// Package shared provides common utility functions used across multiple
// packages in the modlet-tools codebase.
package shared

import (
	"bytes"
	"strings"
)

// FlatName normalizes a directive name for matching: lowercased with
// underscores and hyphens removed, so "insertAfter", "insert_after" and
// "INSERT-AFTER" all compare equal.
func FlatName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer("_", "", "-", "")
	return replacer.Replace(lower)
}

// LineAt returns the 1-based line number of the byte offset in data.
func LineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + bytes.Count(data[:offset], []byte{'\n'})
}

// SplitList splits a delimited list into trimmed, non-empty values.
func SplitList(value string, delim string) []string {
	if delim == "" {
		delim = ","
	}
	var values []string
	for _, part := range strings.Split(value, delim) {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}
